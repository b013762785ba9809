package cache

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexKey = regexp.MustCompile(`^[0-9a-f]{32}$`)

type courseCtx struct {
	CourseID   string   `json:"courseId"`
	ModuleName string   `json:"moduleName,omitempty"`
	Objectives []string `json:"learningObjectives,omitempty"`
}

func TestFingerprint_Deterministic(t *testing.T) {
	f := NewFingerprinter()

	ctx := map[string]any{"courseId": "c1", "moduleName": "Biology"}
	opts := map[string]any{"tone": "formal", "length": "brief"}

	k1, err := f.Fingerprint("text", "Explain photosynthesis", ctx, opts)
	require.NoError(t, err)
	k2, err := f.Fingerprint("text", "Explain photosynthesis", ctx, opts)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, FingerprintLength)
	assert.Regexp(t, hexKey, k1)
}

func TestFingerprint_ReorderedKeys(t *testing.T) {
	f := NewFingerprinter()

	// Build the same maps with different insertion orders.
	a := map[string]any{}
	a["courseId"] = "c1"
	a["nested"] = map[string]any{"x": 1, "y": []any{"p", "q"}}
	a["moduleName"] = "Biology"

	b := map[string]any{}
	b["moduleName"] = "Biology"
	b["nested"] = map[string]any{"y": []any{"p", "q"}, "x": 1}
	b["courseId"] = "c1"

	k1, err := f.Fingerprint("text", "p", a, map[string]any{"tone": "formal", "length": "brief"})
	require.NoError(t, err)
	k2, err := f.Fingerprint("text", "p", b, map[string]any{"length": "brief", "tone": "formal"})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestFingerprint_StructAndMapAgree(t *testing.T) {
	f := NewFingerprinter()

	k1, err := f.Fingerprint("text", "p", courseCtx{CourseID: "c1", ModuleName: "Bio"}, nil)
	require.NoError(t, err)
	k2, err := f.Fingerprint("text", "p", map[string]any{"moduleName": "Bio", "courseId": "c1"}, nil)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestFingerprint_Distinguishes(t *testing.T) {
	f := NewFingerprinter()
	base := map[string]any{"courseId": "c1"}

	k, err := f.Fingerprint("text", "p", base, map[string]any{})
	require.NoError(t, err)

	tests := []struct {
		name      string
		blockType string
		prompt    string
		context   any
		options   any
	}{
		{"block type", "quiz", "p", base, map[string]any{}},
		{"prompt", "text", "q", base, map[string]any{}},
		{"context", "text", "p", map[string]any{"courseId": "c2"}, map[string]any{}},
		{"options", "text", "p", base, map[string]any{"tone": "formal"}},
		{"slice order", "text", "p", courseCtx{CourseID: "c1", Objectives: []string{"b", "a"}}, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, err := f.Fingerprint(tt.blockType, tt.prompt, tt.context, tt.options)
			require.NoError(t, err)
			assert.NotEqual(t, k, other)
		})
	}
}

func TestFingerprint_NotSerializable(t *testing.T) {
	f := NewFingerprinter()
	_, err := f.Fingerprint("text", "p", map[string]any{"fn": func() {}}, nil)
	assert.Error(t, err)
}

func TestCanonicalize_SortsNestedKeys(t *testing.T) {
	got, err := Canonicalize(map[string]any{
		"b": 2,
		"a": map[string]any{"z": true, "m": nil},
		"c": []any{3, map[string]any{"y": "1", "x": "2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"m":null,"z":true},"b":2,"c":[3,{"x":"2","y":"1"}]}`, string(got))
}

func TestCanonicalize_PreservesNumbers(t *testing.T) {
	got, err := Canonicalize(map[string]any{"big": int64(9007199254740993), "f": 1.5})
	require.NoError(t, err)
	assert.Equal(t, `{"big":9007199254740993,"f":1.5}`, string(got))
}
