package ram

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeysByUTF16(t *testing.T) {
	b, err := MarshalCanonical(map[string]any{
		"zeta":  int64(1),
		"alpha": int64(2),
		"mid":   int64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(b))

	// RFC 8785 orders by UTF-16 code units: characters above the BMP
	// encode as surrogate pairs starting at 0xD800, which sort before
	// 0xFB00-range code points even though their UTF-8 bytes sort after.
	// U+FB00 has only a compatibility decomposition, so it is NFC-stable.
	b, err = MarshalCanonical(map[string]any{
		"ﬀ":     int64(1), // LATIN SMALL LIGATURE FF
		"\U0001F600": int64(2), // surrogate pair D83D DE00
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"ﬀ\":1}", string(b))
}

func TestMarshalCanonical_SortsKeysAfterNFCNormalization(t *testing.T) {
	// U+FB33 is composition-excluded: NFC rewrites it to U+05D3 U+05BC,
	// moving it from after U+0627 to before it in code-unit order. The
	// emitted order must follow the normalized form.
	b, err := MarshalCanonical(map[string]any{
		"דּ": int64(1), // HEBREW LETTER DALET WITH DAGESH
		"ا": int64(2), // ARABIC LETTER ALEF
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"דּ\":1,\"ا\":2}", string(b))
}

func TestMarshalCanonical_KeyCollisionAfterNormalization(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{
		"דּ":       int64(1),
		"דּ": int64(2),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collide")
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	b, err := MarshalCanonical(map[string]any{"op": "<&>"})
	require.NoError(t, err)
	assert.Equal(t, `{"op":"<&>"}`, string(b))
}

func TestMarshalCanonical_RejectsUnsupportedTypes(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	require.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": nil})
	require.Error(t, err)
}

func TestCanonicalMap_CoversEveryNodeKind(t *testing.T) {
	q := &Query{Op: &Scan{
		Relation: "s",
		Tuple:    0,
		Body: &Aggregate{
			Tuple:    1,
			Fn:       AggMax,
			Relation: "t",
			Expr:     &TupleElement{Tuple: 1, Element: 0},
			Cond: &Conjunction{
				LHS: &Negation{Cond: &ExistenceCheck{
					Relation: "u",
					Values:   []Expression{&UndefValue{}},
				}},
				RHS: &EmptinessCheck{Relation: "v"},
			},
			Body: &Filter{
				Cond: &Negation{Cond: &ProvenanceExistenceCheck{
					Relation: "w",
					Values:   []Expression{&SignedConstant{Value: -1}},
				}},
				Body: &Project{
					Relation: "r",
					Values: []Expression{&IntrinsicOp{
						Op:   "+",
						Args: []Expression{&TupleElement{Tuple: 0, Element: 0}, &SignedConstant{Value: 1}},
					}},
				},
			},
		},
	}}

	_, err := MarshalCanonical(CanonicalMap(q))
	require.NoError(t, err)

	ret := &Query{Op: &SubroutineReturn{Values: []Expression{&SignedConstant{Value: 2}}}}
	_, err = MarshalCanonical(CanonicalMap(ret))
	require.NoError(t, err)
}

func TestFingerprint(t *testing.T) {
	q1 := &Query{Op: &Project{
		Relation: "r",
		Values:   []Expression{&SignedConstant{Value: 1}, &SignedConstant{Value: 2}},
	}}
	q2 := &Query{Op: &Project{
		Relation: "r",
		Values:   []Expression{&SignedConstant{Value: 1}, &SignedConstant{Value: 2}},
	}}
	// Same values, different order.
	q3 := &Query{Op: &Project{
		Relation: "r",
		Values:   []Expression{&SignedConstant{Value: 2}, &SignedConstant{Value: 1}},
	}}

	fp1, err := Fingerprint(q1)
	require.NoError(t, err)
	fp2, err := Fingerprint(q2)
	require.NoError(t, err)
	fp3, err := Fingerprint(q3)
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), fp1)
}
