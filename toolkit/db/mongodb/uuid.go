// toolkit/db/mongodb/uuid.go
package mongodb

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var tUUID = reflect.TypeOf(uuid.UUID{})

// NewRegistry returns the driver's default registry with uuid.UUID mapped to
// the standard BSON representation (binary subtype 4).
//
// Without it the driver writes a uuid.UUID as a plain byte array, which other
// tools and drivers do not read back as a UUID.
func NewRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(tUUID, bsoncodec.ValueEncoderFunc(encodeUUID))
	reg.RegisterTypeDecoder(tUUID, bsoncodec.ValueDecoderFunc(decodeUUID))
	return reg
}

func encodeUUID(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tUUID {
		return bsoncodec.ValueEncoderError{Name: "UUIDEncodeValue", Types: []reflect.Type{tUUID}, Received: val}
	}
	id := val.Interface().(uuid.UUID)
	return vw.WriteBinaryWithSubtype(id[:], bsontype.BinaryUUID)
}

func decodeUUID(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != tUUID {
		return bsoncodec.ValueDecoderError{Name: "UUIDDecodeValue", Types: []reflect.Type{tUUID}, Received: val}
	}

	switch vr.Type() {
	case bsontype.Binary:
		data, subtype, err := vr.ReadBinary()
		if err != nil {
			return err
		}
		switch subtype {
		case bsontype.BinaryUUID:
		case bsontype.BinaryUUIDOld:
			return ErrLegacyUUID
		default:
			return fmt.Errorf("mongodb: cannot decode binary subtype %#x into uuid.UUID", subtype)
		}
		if len(data) != len(uuid.UUID{}) {
			return fmt.Errorf("mongodb: uuid must be 16 bytes, got %d", len(data))
		}
		var id uuid.UUID
		copy(id[:], data)
		val.Set(reflect.ValueOf(id))
		return nil
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	case bsontype.Undefined:
		if err := vr.ReadUndefined(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("mongodb: cannot decode %v into uuid.UUID", vr.Type())
	}

	val.Set(reflect.Zero(tUUID))
	return nil
}
