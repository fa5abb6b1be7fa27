// Package uploads hands out presigned S3 PUT URLs so clients can upload CVs
// without streaming them through the API.
package uploads

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/shared/apperr"
	"jobportal-backend/internal/shared/server/middleware"
	"jobportal-backend/internal/shared/server/respond"
	"jobportal-backend/internal/shared/storage/object"
	"jobportal-backend/internal/shared/telemetry"
	"jobportal-backend/internal/shared/validate"
)

const (
	maxUploadBytes       = 5 << 20
	presignExpires       = 15 * time.Minute
	defaultRegion        = "us-east-1"
	defaultUploadsPrefix = "uploads/"
)

// contentTypes lists the declared content types accepted per extension.
var contentTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

var (
	errFileType = apperr.Validation("Only PDF, DOC and DOCX files are allowed")
	errTooLarge = apperr.Validation("sizeBytes exceeds the 5 MB limit")
)

type presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Handler struct {
	signer presigner
	bucket string
	prefix string
}

// NewHandler builds a presigning handler for bucket. An empty prefix uses "uploads/".
func NewHandler(ctx context.Context, region, bucket, prefix string) (*Handler, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("UPLOADS_S3_BUCKET is required")
	}
	if region = strings.TrimSpace(region); region == "" {
		region = defaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return newHandler(s3.NewPresignClient(s3.NewFromConfig(cfg)), bucket, prefix), nil
}

func newHandler(signer presigner, bucket, prefix string) *Handler {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = strings.TrimSuffix(defaultUploadsPrefix, "/")
	}
	return &Handler{signer: signer, bucket: strings.TrimSpace(bucket), prefix: prefix}
}

type presignRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,min=1"`
}

// presignResponse carries the URL plus the headers the PUT must repeat,
// since Content-Type is part of the signature.
type presignResponse struct {
	UploadURL        string            `json:"uploadUrl"`
	Method           string            `json:"method"`
	Headers          map[string]string `json:"headers"`
	S3Key            string            `json:"s3Key"`
	ExpiresInSeconds int64             `json:"expiresInSeconds"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/presign", h.presign)
}

func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Validation("invalid request body"))
		return
	}
	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = strings.ToLower(strings.TrimSpace(req.ContentType))
	if err := validate.Struct(req); err != nil {
		respond.Err(c, err)
		return
	}
	if err := checkType(req.FileName, req.ContentType); err != nil {
		respond.Err(c, err)
		return
	}
	if req.SizeBytes > maxUploadBytes {
		respond.Err(c, errTooLarge)
		return
	}

	key, err := object.NewKey(middleware.UserIDFromContext(c), req.FileName)
	if err != nil {
		respond.Err(c, apperr.Validation("invalid fileName"))
		return
	}
	key = path.Join(h.prefix, key)

	out, err := h.signer.PresignPutObject(c.Request.Context(), presignInput(h.bucket, key, req.ContentType),
		func(o *s3.PresignOptions) { o.Expires = presignExpires })
	if err != nil {
		telemetry.Error("uploads.presign_failed", map[string]any{
			"bucket":     h.bucket,
			"key":        key,
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err,
		})
		respond.Err(c, apperr.Unavailable("failed to generate upload url", err))
		return
	}

	respond.OK(c, presignResponse{
		UploadURL:        out.URL,
		Method:           out.Method,
		Headers:          map[string]string{"Content-Type": req.ContentType},
		S3Key:            key,
		ExpiresInSeconds: int64(presignExpires / time.Second),
	})
}

func checkType(fileName, contentType string) error {
	for _, allowed := range contentTypes[strings.ToLower(filepath.Ext(fileName))] {
		if allowed == contentType {
			return nil
		}
	}
	return errFileType
}

func presignInput(bucket, key, contentType string) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
}
