package sink

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// An ObjectPutter is the subset of the S3 API used by S3.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads datasets to a bucket.
type S3 struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewS3 returns an S3 sink. Static credentials are used when accessKey is
// set, otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, bucket, prefix, region, accessKey, secretKey string) (*S3, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return NewS3WithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3WithClient returns an S3 sink using client.
func NewS3WithClient(client ObjectPutter, bucket, prefix string) *S3 {
	return &S3{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Save uploads <prefix>/<name>.csv and <prefix>/<name>.geojson and returns
// their s3:// URLs.
func (s *S3) Save(ctx context.Context, name string, ds Dataset) ([]string, error) {
	objects := []struct {
		key         string
		body        []byte
		contentType string
	}{
		{key: path.Join(s.prefix, name+ExtCSV), body: ds.CSV, contentType: MediaTypeCSV},
		{key: path.Join(s.prefix, name+ExtGeoJSON), body: ds.GeoJSON, contentType: MediaTypeGeoJSON},
	}

	locations := make([]string, 0, len(objects))
	for _, o := range objects {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(o.key),
			Body:        bytes.NewReader(o.body),
			ContentType: aws.String(o.contentType),
		})
		if err != nil {
			return nil, err
		}
		locations = append(locations, "s3://"+s.bucket+"/"+o.key)
	}

	log.Debug().
		Str("bucket", s.bucket).
		Strs("keys", locations).
		Msg("Outputs uploaded to S3")

	return locations, nil
}
