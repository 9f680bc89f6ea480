package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gelato/internal/ir"
)

// AssertGolden compares the canonical JSON of encoded against
// testdata/golden/{name}.golden, relative to the calling test's package.
//
// To regenerate golden files, run:
//
//	go test ./internal/encode -update
//
// Golden files hold canonical JSON with no trailing newline.
func AssertGolden(t *testing.T, name string, encoded ir.IRArray) {
	t.Helper()

	data, err := ir.MarshalCanonical(encoded)
	require.NoError(t, err, "encoded value must marshal canonically")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
