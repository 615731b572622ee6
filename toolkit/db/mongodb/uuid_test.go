package mongodb

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type record struct {
	ID uuid.UUID `bson:"id"`
}

func TestRegistry_DecodesStandardUUID(t *testing.T) {
	id := uuid.New()
	b, err := bson.Marshal(bson.D{{Key: "id", Value: primitive.Binary{Subtype: bsontype.BinaryUUID, Data: id[:]}}})
	require.NoError(t, err)

	var got record
	require.NoError(t, bson.UnmarshalWithRegistry(NewRegistry(), b, &got))
	assert.Equal(t, id, got.ID)
}

func TestRegistry_EncodesStructField(t *testing.T) {
	reg := NewRegistry()
	in := record{ID: uuid.New()}

	b, err := bson.MarshalWithRegistry(reg, in)
	require.NoError(t, err)

	subtype, data := bson.Raw(b).Lookup("id").Binary()
	assert.Equal(t, bsontype.BinaryUUID, subtype)
	assert.Equal(t, in.ID[:], data)

	var out record
	require.NoError(t, bson.UnmarshalWithRegistry(reg, b, &out))
	assert.Equal(t, in.ID, out.ID)
}

func TestRegistry_RejectsLegacyUUID(t *testing.T) {
	id := uuid.New()
	b, err := bson.Marshal(bson.D{{Key: "id", Value: primitive.Binary{Subtype: bsontype.BinaryUUIDOld, Data: id[:]}}})
	require.NoError(t, err)

	var got record
	err = bson.UnmarshalWithRegistry(NewRegistry(), b, &got)
	assert.ErrorIs(t, err, ErrLegacyUUID)
}

func TestRegistry_RejectsOtherBinary(t *testing.T) {
	tests := []struct {
		name string
		bin  primitive.Binary
	}{
		{"generic subtype", primitive.Binary{Subtype: bsontype.BinaryGeneric, Data: make([]byte, 16)}},
		{"short uuid", primitive.Binary{Subtype: bsontype.BinaryUUID, Data: []byte{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := bson.Marshal(bson.D{{Key: "id", Value: tt.bin}})
			require.NoError(t, err)

			var got record
			assert.Error(t, bson.UnmarshalWithRegistry(NewRegistry(), b, &got))
		})
	}
}

func TestRegistry_NullDecodesToZero(t *testing.T) {
	b, err := bson.Marshal(bson.D{{Key: "id", Value: nil}})
	require.NoError(t, err)

	got := record{ID: uuid.New()}
	require.NoError(t, bson.UnmarshalWithRegistry(NewRegistry(), b, &got))
	assert.Equal(t, uuid.Nil, got.ID)
}

func TestRegistry_RejectsString(t *testing.T) {
	b, err := bson.Marshal(bson.D{{Key: "id", Value: uuid.NewString()}})
	require.NoError(t, err)

	var got record
	assert.Error(t, bson.UnmarshalWithRegistry(NewRegistry(), b, &got))
}
