package derive_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	structema "github.com/reoring/structema"
	"github.com/reoring/structema/derive"
	"github.com/reoring/structema/enumfield"
	"github.com/reoring/structema/fields"
)

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func TestField_PrimitiveTable(t *testing.T) {
	cases := []struct {
		typ  reflect.Type
		want any
	}{
		{typeOf[int](), &fields.Integer{}},
		{typeOf[int64](), &fields.Integer{}},
		{typeOf[uint32](), &fields.Integer{}},
		{typeOf[float64](), &fields.Float{}},
		{typeOf[string](), &fields.String{}},
		{typeOf[bool](), &fields.Boolean{}},
		{typeOf[map[string]any](), &fields.Dict{}},
		{typeOf[time.Time](), &fields.DateTime{}},
		{typeOf[time.Duration](), &fields.Duration{}},
		{typeOf[structema.Date](), &fields.Date{}},
		{typeOf[structema.Clock](), &fields.Clock{}},
		{typeOf[decimal.Decimal](), &fields.Decimal{}},
		{typeOf[uuid.UUID](), &fields.UUID{}},
		{typeOf[any](), &fields.Raw{}},
	}
	for _, tc := range cases {
		f, err := derive.Field(tc.typ, structema.Missing, structema.Metadata{})
		require.NoError(t, err, tc.typ.String())
		assert.IsType(t, tc.want, f, tc.typ.String())
	}
}

func TestField_DefaultAndRequiredWiring(t *testing.T) {
	f, err := derive.Field(typeOf[int](), 9, structema.Metadata{})
	require.NoError(t, err)
	dv, ok := f.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, 9, dv)
	assert.False(t, f.Required())

	f, err = derive.Field(typeOf[int](), structema.Missing, structema.Metadata{})
	require.NoError(t, err)
	_, ok = f.DefaultValue()
	assert.False(t, ok)
	assert.True(t, f.Required())

	// explicit metadata wins over inference
	r := true
	f, err = derive.Field(typeOf[int](), 9, structema.Metadata{Required: &r})
	require.NoError(t, err)
	assert.True(t, f.Required())
}

func TestField_OptionalPointerEquivalence(t *testing.T) {
	f, err := derive.Field(typeOf[*string](), structema.Missing, structema.Metadata{})
	require.NoError(t, err)
	assert.IsType(t, &fields.String{}, f)
	assert.False(t, f.Required())
	dv, ok := f.DefaultValue()
	require.True(t, ok)
	assert.Nil(t, dv)
	mv, ok := f.MissingValue()
	require.True(t, ok)
	assert.Nil(t, mv)

	// a pointer's own default survives the unwrap
	f, err = derive.Field(typeOf[*int](), 5, structema.Metadata{})
	require.NoError(t, err)
	dv, _ = f.DefaultValue()
	assert.Equal(t, 5, dv)
	assert.False(t, f.Required())
}

func TestField_OverrideBypassesInference(t *testing.T) {
	custom := fields.NewString(fields.Opts{Required: true})
	// the declared type is not even something the resolver supports
	f, err := derive.Field(typeOf[chan int](), structema.Missing, structema.Metadata{FieldOverride: custom})
	require.NoError(t, err)
	assert.Same(t, custom, f.(*fields.String))
}

type Meters float64

func TestField_AliasUnwrapsWithName(t *testing.T) {
	f, err := derive.Field(typeOf[Meters](), structema.Missing, structema.Metadata{})
	require.NoError(t, err)
	fl := f.(*fields.Float)
	assert.Equal(t, "Meters", fl.Opt.Description)

	// alias with a default keeps it
	f, err = derive.Field(typeOf[Meters](), 2.5, structema.Metadata{})
	require.NoError(t, err)
	dv, ok := f.DefaultValue()
	require.True(t, ok)
	assert.Equal(t, 2.5, dv)
}

func TestField_Containers(t *testing.T) {
	f, err := derive.Field(typeOf[[]string](), structema.Missing, structema.Metadata{})
	require.NoError(t, err)
	lst := f.(*fields.List)
	assert.IsType(t, &fields.String{}, lst.Elem)

	f, err = derive.Field(typeOf[map[int]bool](), structema.Missing, structema.Metadata{})
	require.NoError(t, err)
	mp := f.(*fields.Map)
	assert.IsType(t, &fields.Integer{}, mp.Key)
	assert.IsType(t, &fields.Boolean{}, mp.Value)

	f, err = derive.Field(typeOf[func(string) string](), structema.Missing, structema.Metadata{})
	require.NoError(t, err)
	assert.IsType(t, &fields.Function{}, f)
}

type Mood int

const (
	Calm Mood = iota
	Excited
)

func TestField_RegisteredEnum(t *testing.T) {
	enumfield.Register(map[string]Mood{"calm": Calm, "excited": Excited})
	f, err := derive.Field(typeOf[Mood](), structema.Missing, structema.Metadata{})
	require.NoError(t, err)
	assert.IsType(t, &enumfield.Field{}, f)
}

func TestField_UnclassifiableTypeIsNotRecord(t *testing.T) {
	_, err := derive.Field(typeOf[chan int](), structema.Missing, structema.Metadata{})
	require.Error(t, err)
	assert.True(t, structema.IsNotRecord(err))

	_, err = derive.Field(nil, structema.Missing, structema.Metadata{})
	assert.True(t, structema.IsNotRecord(err))
}
