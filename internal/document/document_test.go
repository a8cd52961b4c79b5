package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestParse(t *testing.T) {
	t.Run("json object", func(t *testing.T) {
		doc := parse(t, `{"openapi": "3.0.0"}`)
		require.Equal(t, "3.0.0", StringValue(doc.Root(), "openapi"))
	})

	t.Run("yaml object", func(t *testing.T) {
		doc := parse(t, "openapi: 3.0.0\n")
		require.Equal(t, "3.0.0", StringValue(doc.Root(), "openapi"))
	})

	t.Run("non-object root", func(t *testing.T) {
		_, err := Parse([]byte(`[1, 2]`))
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Parse([]byte("{broken"))
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestResolve(t *testing.T) {
	doc := parse(t, `{
	  "components": {
	    "schemas": {
	      "Board": {"type": "object"},
	      "a/b": {"type": "integer"}
	    }
	  }
	}`)

	t.Run("resolves nested path", func(t *testing.T) {
		node, err := doc.Resolve("#/components/schemas/Board")
		require.NoError(t, err)
		require.Equal(t, "object", StringValue(node, "type"))
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := doc.Resolve("#/components/schemas/Nope")
		require.ErrorIs(t, err, ErrReference)

		var refErr *ReferenceError
		require.True(t, errors.As(err, &refErr))
		require.Equal(t, "#/components/schemas/Nope", refErr.Ref)
		require.False(t, refErr.IsCircular)
	})

	t.Run("non-local forms rejected", func(t *testing.T) {
		for _, ref := range []string{"other.yaml#/X", "http://example.com/spec#/X", "#X", ""} {
			_, err := doc.Resolve(ref)
			require.ErrorIs(t, err, ErrReference, ref)
		}
	})

	t.Run("tokens are raw keys", func(t *testing.T) {
		// Escaped pointer tokens are not decoded, so a key containing
		// a slash is unreachable.
		_, err := doc.Resolve("#/components/schemas/a~1b")
		require.ErrorIs(t, err, ErrReference)
	})
}

func TestTruthy(t *testing.T) {
	doc := parse(t, `{
	  "emptyMap": {},
	  "emptySeq": [],
	  "emptyStr": "",
	  "null": null,
	  "zero": 0,
	  "false": false,
	  "full": {"a": 1}
	}`)
	root := doc.Root()

	for _, key := range []string{"emptyMap", "emptySeq", "emptyStr", "null", "missing"} {
		require.False(t, Truthy(Lookup(root, key)), key)
	}
	// Numeric and boolean scalars are only empty when null; 0 and
	// false still count as present values.
	for _, key := range []string{"zero", "false", "full"} {
		require.True(t, Truthy(Lookup(root, key)), key)
	}
}

func TestOptionalAccessors(t *testing.T) {
	doc := parse(t, `{"s": "hi", "n": null, "b": true}`)
	root := doc.Root()

	require.Equal(t, "hi", *OptString(root, "s"))
	require.Nil(t, OptString(root, "n"))
	require.Nil(t, OptString(root, "missing"))

	require.True(t, *OptBool(root, "b"))
	require.Nil(t, OptBool(root, "n"))
	require.Nil(t, OptBool(root, "missing"))

	require.True(t, Has(root, "n"))
	require.False(t, Has(root, "missing"))
	require.Nil(t, Lookup(root, "missing"))
	require.True(t, IsNull(Lookup(root, "n")))
}

func TestPairsOrder(t *testing.T) {
	doc := parse(t, `{"zebra": 1, "apple": 2, "mango": 3}`)

	keys := []string{}
	for k := range Pairs(doc.Root()) {
		keys = append(keys, k)
	}
	require.Equal(t, []string{"zebra", "apple", "mango"}, keys)
}
