package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/clouddrive/backend/internal/config"
	"github.com/clouddrive/backend/internal/models"
)

// S3Gateway stores content in Amazon S3 or any S3-compatible object
// store (MinIO, Localstack). Object keys are "<prefix><kind>/<uuid>";
// the full key doubles as the content handle.
type S3Gateway struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	publicURL string
}

// NewS3Gateway builds the S3 client and verifies bucket access. The
// bucket must already exist.
func NewS3Gateway(ctx context.Context, cfg *config.Config) (*S3Gateway, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(cfg.S3Region))

	// Custom endpoint for S3-compatible stores
	if cfg.S3Endpoint != "" {
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.S3Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default chain
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing for MinIO/Localstack compatibility
		if cfg.S3Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.S3Bucket),
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.S3Bucket, err)
	}

	publicURL := cfg.S3Endpoint
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	} else {
		publicURL = strings.TrimSuffix(publicURL, "/") + "/" + cfg.S3Bucket
	}

	return &S3Gateway{
		client:    client,
		bucket:    cfg.S3Bucket,
		keyPrefix: cfg.S3KeyPrefix,
		publicURL: publicURL,
	}, nil
}

func (g *S3Gateway) Store(ctx context.Context, data []byte, kind models.ItemKind) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}

	key := fmt.Sprintf("%s%s/%s", g.keyPrefix, kind, uuid.New().String())

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return Object{}, fmt.Errorf("%w: put object: %v", ErrGatewayFailure, err)
	}

	return Object{
		Handle: key,
		URL:    g.publicURL + "/" + key,
	}, nil
}

func (g *S3Gateway) Destroy(ctx context.Context, handle string) error {
	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("%w: delete object: %v", ErrGatewayFailure, err)
	}
	return nil
}
