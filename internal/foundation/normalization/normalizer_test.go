package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type backend string

func TestNormalizer(t *testing.T) {
	n := NewNormalizer("provider", map[string]backend{
		"s3":     "s3",
		"AWS":    "s3",
		"gcs":    "gcs",
		"google": "gcs",
	})

	cases := map[string]backend{
		"s3":       "s3",
		" aws ":    "s3",
		"GCS":      "gcs",
		"Google\n": "gcs",
	}
	for raw, want := range cases {
		got, err := n.Normalize(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := n.Normalize("azure")
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid provider "azure"`)
	require.Contains(t, err.Error(), "aws, gcs, google, s3")

	require.Equal(t, []string{"aws", "gcs", "google", "s3"}, n.ValidKeys())
}
