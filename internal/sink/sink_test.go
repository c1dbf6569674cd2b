package sink

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/openelevation/internal/config"
)

var testDataset = Dataset{
	CSV:     []byte("longitude,latitude,elevation\n20,10,20\n"),
	GeoJSON: []byte(`{"type":"FeatureCollection","features":[]}`),
}

func TestBaseName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	assert.Equal(t, "open_elevation_20240309_070501", BaseName(ts))
}

func TestDisk_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs", "nested")

	paths, err := Disk{Dir: dir}.Save(testContext(t), "open_elevation_x", testDataset)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "open_elevation_x.csv"),
		filepath.Join(dir, "open_elevation_x.geojson"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, testDataset.CSV, data)

	data, err = os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, testDataset.GeoJSON, data)
}

type fakePutter struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	f.objects[key] = body
	f.types[key] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3_Save(t *testing.T) {
	putter := &fakePutter{objects: map[string][]byte{}, types: map[string]string{}}
	s := NewS3WithClient(putter, "bucket", "elevation")

	locations, err := s.Save(testContext(t), "run", testDataset)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"s3://bucket/elevation/run.csv",
		"s3://bucket/elevation/run.geojson",
	}, locations)
	assert.Equal(t, testDataset.CSV, putter.objects["bucket/elevation/run.csv"])
	assert.Equal(t, MediaTypeGeoJSON, putter.types["bucket/elevation/run.geojson"])
}

func TestS3_SaveError(t *testing.T) {
	s := NewS3WithClient(&fakePutter{err: errors.New("denied")}, "bucket", "")
	locations, err := s.Save(testContext(t), "run", testDataset)
	assert.Error(t, err)
	assert.Nil(t, locations)
}

func TestNew_Disk(t *testing.T) {
	s, err := New(testContext(t), "outputs", config.S3{})
	require.NoError(t, err)
	assert.Equal(t, Disk{Dir: "outputs"}, s)
}

// testContext stands in for testing.T.Context (Go 1.24+) on older toolchains.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
