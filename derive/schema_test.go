package derive_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	structema "github.com/reoring/structema"
	"github.com/reoring/structema/derive"
	"github.com/reoring/structema/fields"
	"github.com/reoring/structema/i18n"
)

type Building struct {
	Height *float64 `json:"height"`
	Name   string   `json:"name" structema:"default=anonymous"`
}

type City struct {
	Name           string     `json:"name" structema:"required"`
	BestBuilding   Building   `json:"best_building"`
	OtherBuildings []Building `json:"other_buildings" structema:"optional"`
}

func TestSchemaOf_NestedRecords(t *testing.T) {
	ctx := context.Background()
	citySchema, err := derive.SchemaOf(City{})
	require.NoError(t, err)

	v, err := citySchema.Load(ctx, map[string]any{
		"name":            "Paris",
		"best_building":   map[string]any{"name": "Eiffel Tower"},
		"other_buildings": []any{},
	})
	require.NoError(t, err)
	city := v.(City)
	assert.Equal(t, "Paris", city.Name)
	assert.Equal(t, "Eiffel Tower", city.BestBuilding.Name)
	assert.Nil(t, city.BestBuilding.Height)
	assert.Len(t, city.OtherBuildings, 0)

	// nested defaults apply
	v, err = citySchema.Load(ctx, map[string]any{
		"name":          "Lyon",
		"best_building": map[string]any{"height": 12.5},
	})
	require.NoError(t, err)
	city = v.(City)
	assert.Equal(t, "anonymous", city.BestBuilding.Name)
	require.NotNil(t, city.BestBuilding.Height)
	assert.Equal(t, 12.5, *city.BestBuilding.Height)
}

func TestSchemaOf_MissingRequiredNestedField(t *testing.T) {
	citySchema, err := derive.SchemaOf(City{})
	require.NoError(t, err)

	_, err = citySchema.Load(context.Background(), map[string]any{"name": "Paris"})
	iss, ok := structema.AsIssues(err)
	require.True(t, ok, "want Issues, got %v", err)
	found := false
	for _, it := range iss {
		if it.Path == "/best_building" && it.Code == structema.CodeRequired {
			found = true
		}
	}
	assert.True(t, found, "issues should name /best_building as required: %v", iss)
}

func TestSchemaOf_InnerSchemaMatchesIndependentDerivation(t *testing.T) {
	citySchema, err := derive.SchemaOf(City{})
	require.NoError(t, err)
	f, ok := citySchema.FieldByKey("best_building")
	require.True(t, ok)
	nested := f.(*fields.Nested)
	inner, err := nested.Schema()
	require.NoError(t, err)

	standalone, err := derive.SchemaOf(Building{})
	require.NoError(t, err)
	assert.Equal(t, standalone.Keys(), inner.Keys())
	for _, key := range standalone.Keys() {
		a, _ := standalone.FieldByKey(key)
		b, _ := inner.FieldByKey(key)
		assert.IsType(t, a, b, key)
	}
}

type Person struct {
	Name    string   `json:"name" structema:"default=Anonymous"`
	Friends []Person `json:"friends" structema:"optional"`
}

func TestSchemaOf_SelfReferentialRecord(t *testing.T) {
	ctx := context.Background()
	person, err := derive.Define[Person]()
	require.NoError(t, err)

	p, err := person.Load(ctx, map[string]any{
		"friends": []any{map[string]any{"name": "Roger Boucher"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", p.Name)
	require.Len(t, p.Friends, 1)
	assert.Equal(t, "Roger Boucher", p.Friends[0].Name)

	out, err := person.Dump(ctx, p)
	require.NoError(t, err)
	friends := out["friends"].([]any)
	require.Len(t, friends, 1)
	assert.Equal(t, "Roger Boucher", friends[0].(map[string]any)["name"])
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func TestSchemaOf_RoundTrip(t *testing.T) {
	ctx := context.Background()
	point := derive.MustDefine[Point]()

	in := Point{X: 1.5, Y: -2}
	wire, err := point.Dump(ctx, in)
	require.NoError(t, err)
	back, err := point.Load(ctx, wire)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

type NeverValid struct {
	Anything *string `json:"anything"`
}

func (n *NeverValid) ValidateRecord(ctx context.Context) error {
	return errors.New("never valid")
}

func TestSchemaOf_RecordLevelValidatorRuns(t *testing.T) {
	s, err := derive.SchemaOf(NeverValid{})
	require.NoError(t, err)
	_, err = s.Load(context.Background(), map[string]any{})
	iss, ok := structema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, structema.CodeSchemaRule, iss[0].Code)
	assert.Equal(t, "/", iss[0].Path)
}

func TestSchemaOf_RejectsNonRecords(t *testing.T) {
	_, err := derive.SchemaOf(nil)
	require.Error(t, err)
	assert.True(t, structema.IsNotRecord(err))

	_, err = derive.SchemaOf(42)
	assert.True(t, structema.IsNotRecord(err))

	var iss structema.Issues
	assert.False(t, errors.As(err, &iss), "not-a-record must not surface as validation Issues")
}

func TestSchemaOf_UnknownKeyPolicies(t *testing.T) {
	ctx := context.Background()

	strict, err := derive.SchemaOf(Point{})
	require.NoError(t, err)
	_, err = strict.Load(ctx, map[string]any{"x": 1.0, "y": 2.0, "z": 3.0})
	iss, ok := structema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, structema.CodeUnknownKey, iss[0].Code)
	assert.Equal(t, "/z", iss[0].Path)

	lax, err := derive.SchemaOf(Point{}, derive.WithUnknown(structema.UnknownStrip))
	require.NoError(t, err)
	v, err := lax.Load(ctx, map[string]any{"x": 1.0, "y": 2.0, "z": 3.0})
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 2}, v)
}

func TestSchemaOf_FieldMetaOptions(t *testing.T) {
	ctx := context.Background()
	s, err := derive.SchemaOf(Point{}, derive.WithDefault("x", 7.0))
	require.NoError(t, err)
	v, err := s.Load(ctx, map[string]any{"y": 2.0})
	require.NoError(t, err)
	assert.Equal(t, Point{X: 7, Y: 2}, v)
}

func TestSchemaOf_ForwardReferenceByName(t *testing.T) {
	ctx := context.Background()

	type Node struct {
		Label string `json:"label" structema:"optional"`
		Next  any    `json:"next" structema:"optional,ref=RefNode"`
	}
	s, err := derive.SchemaOf(Node{}, derive.WithName("RefNode"))
	require.NoError(t, err)

	v, err := s.Load(ctx, map[string]any{
		"label": "a",
		"next":  map[string]any{"label": "b"},
	})
	require.NoError(t, err)
	n := v.(Node)
	assert.Equal(t, "a", n.Label)
	assert.Equal(t, "b", n.Next.(Node).Label)
}

func TestJSONSchema_Projection(t *testing.T) {
	s, err := derive.SchemaOf(City{})
	require.NoError(t, err)
	js, err := s.JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "object", js.Type)
	assert.Contains(t, js.Required, "name")
	assert.Contains(t, js.Required, "best_building")
	assert.NotContains(t, js.Required, "other_buildings")
	assert.Equal(t, "#/$defs/Building", js.Properties["best_building"].Ref)
}

func TestJSONSchema_CollectsReferencedDefs(t *testing.T) {
	s, err := derive.SchemaOf(City{})
	require.NoError(t, err)
	js, err := s.JSONSchema()
	require.NoError(t, err)

	b := js.Defs["Building"]
	require.NotNil(t, b, "every $ref target must appear under $defs")
	assert.Equal(t, "object", b.Type)
	assert.Contains(t, b.Properties, "height")
	assert.Contains(t, b.Properties, "name")
	assert.Nil(t, b.Defs, "definitions are flattened at the document root")
}

func TestJSONSchema_RecursiveRecord(t *testing.T) {
	person, err := derive.Define[Person]()
	require.NoError(t, err)
	js, err := person.Schema().JSONSchema()
	require.NoError(t, err)

	assert.Equal(t, "#/$defs/Person", js.Properties["friends"].Items.Ref)
	p := js.Defs["Person"]
	require.NotNil(t, p)
	assert.Equal(t, "#/$defs/Person", p.Properties["friends"].Items.Ref)
}

type Gauge struct {
	V float64 `json:"v"`
}

func TestSchemaOf_CustomizedDerivationKeepsBareCache(t *testing.T) {
	ctx := context.Background()
	lax, err := derive.SchemaOf(Gauge{}, derive.WithUnknown(structema.UnknownStrip))
	require.NoError(t, err)
	_, err = lax.Load(ctx, map[string]any{"v": 1.0, "zzz": true})
	require.NoError(t, err)

	s, err := derive.SchemaOf(Gauge{})
	require.NoError(t, err)
	_, err = s.Load(ctx, map[string]any{"v": 1.0, "zzz": true})
	iss, ok := structema.AsIssues(err)
	require.True(t, ok, "bare derivation must stay strict after a customized one")
	assert.Equal(t, structema.CodeUnknownKey, iss[0].Code)
	assert.Equal(t, "/zzz", iss[0].Path)
}

type recordingTranslator struct {
	data map[string]map[string]string
}

func (r *recordingTranslator) Message(code string, data map[string]string) string {
	r.data[code] = data
	return code
}

func TestLoad_PassesIssueDataToTranslator(t *testing.T) {
	rec := &recordingTranslator{data: map[string]map[string]string{}}
	i18n.SetTranslator(rec)
	defer i18n.SetTranslator(nil)

	s, err := derive.SchemaOf(City{})
	require.NoError(t, err)
	_, err = s.Load(context.Background(), map[string]any{"name": "Paris", "zzz": 1})
	require.Error(t, err)
	assert.Equal(t, "zzz", rec.data[structema.CodeUnknownKey]["key"])
	assert.Equal(t, "best_building", rec.data[structema.CodeRequired]["key"])
}
