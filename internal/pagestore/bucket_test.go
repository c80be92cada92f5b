package pagestore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBucketValidatesConfig(t *testing.T) {
	cases := []BucketConfig{
		{},
		{Endpoint: "localhost:9000"},
		{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
	}
	for _, cfg := range cases {
		_, err := NewBucket(cfg)
		require.Error(t, err)
	}
}

func TestBucketObjectKey(t *testing.T) {
	b, err := NewBucket(BucketConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Bucket:    "pages",
		Prefix:    "/team/snapshots/",
	})
	require.NoError(t, err)
	require.Equal(t, "team/snapshots/x.json", b.objectKey("x.json"))
	require.Equal(t, "us-east-1", b.region)

	b.prefix = ""
	require.Equal(t, "x.json", b.objectKey("x.json"))
}
