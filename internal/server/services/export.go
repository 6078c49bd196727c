package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	sc "github.com/Aditya-creator173/SQL-Compiler/internal/server/config"
	"github.com/Aditya-creator173/SQL-Compiler/internal/sqlid"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

type ExportResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

// ExportService dumps a tenant table as JSON into object storage and hands
// back a presigned download link.
type ExportService struct {
	sessions Sessions
	config   *sc.Config
	logger   logging.Logger
}

func NewExportService(sessions Sessions, config *sc.Config, logger logging.Logger) *ExportService {
	return &ExportService{sessions: sessions, config: config, logger: logger.With("module", "export")}
}

// ExportKey is the object key for a table dump taken at t.
func ExportKey(dbName, table string, t time.Time) string {
	return fmt.Sprintf("exports/%s/%d/%d/%d/%s-%v.json", dbName, t.Year(), t.Month(), t.Day(), table, uuid.New())
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *ExportService) Export(ctx context.Context, dbName, table string) (*ExportResult, error) {
	if !s.config.ExportEnabled() {
		return nil, common.ErrorExportUnavailable
	}
	if dbName == "" {
		return nil, fmt.Errorf("%w: dbName is required", common.ErrorValidation)
	}
	quoted, err := sqlid.QuoteValid(table)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	sess, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession(ctx, sess, s.logger)

	if err := sess.Use(ctx, dbName); err != nil {
		return nil, err
	}
	rs, err := sess.Query(ctx, "SELECT * FROM "+quoted)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(rs)
	if err != nil {
		return nil, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	key := ExportKey(dbName, table, now())
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.config.ExportLinkValidity))
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.logger.Info(ctx, "table exported", "db", dbName, "table", table, "rows", len(rs.Rows), "key", key)
	return &ExportResult{Key: key, URL: req.URL, Rows: len(rs.Rows)}, nil
}
