package s3_test

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"consultation/config"
	otelMocks "consultation/infras/otel/mocks"
	store "consultation/infras/s3"
	"consultation/infras/s3/mocks"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type memFile struct {
	*strings.Reader
}

func (memFile) Close() error { return nil }

func newStore(t *testing.T) (store.S3, *mocks.MockObjectAPI) {
	t.Helper()

	cfg := &config.Config{}
	cfg.External.S3.BucketName = "catalogue"
	cfg.External.S3.PublicDomain = "https://cdn.acme.test"
	cfg.External.S3.APIEndpoint = "https://s3.acme.test"

	api := mocks.NewMockObjectAPI(gomock.NewController(t))

	return store.NewWithClient(cfg, api, otelMocks.NewOtel()), api
}

func TestUploadFile(t *testing.T) {
	svc, api := newStore(t)

	api.EXPECT().PutObject(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "catalogue", *input.Bucket)
			assert.Equal(t, "acme/category/c1.png", *input.Key)
			assert.Equal(t, "image/png", *input.ContentType)
			assert.Equal(t, int64(4), *input.ContentLength)

			body, _ := io.ReadAll(input.Body)
			assert.Equal(t, "\x89PNG", string(body))

			return &s3.PutObjectOutput{}, nil
		})

	header := &multipart.FileHeader{Header: textproto.MIMEHeader{"Content-Type": {"image/png"}}}

	url, err := svc.UploadFile(context.Background(), "acme/category", memFile{strings.NewReader("\x89PNG")}, header, "c1.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.acme.test/acme/category/c1.png", url)
}

func TestUploadFile_Error(t *testing.T) {
	svc, api := newStore(t)

	api.EXPECT().PutObject(gomock.Any(), gomock.Any()).Return(nil, errors.New("access denied"))

	header := &multipart.FileHeader{Header: textproto.MIMEHeader{}}

	url, err := svc.UploadFile(context.Background(), "d", memFile{strings.NewReader("x")}, header, "f.png")
	assert.Error(t, err)
	assert.Empty(t, url)
}

func TestDeleteByURL(t *testing.T) {
	svc, api := newStore(t)

	api.EXPECT().DeleteObject(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			assert.Equal(t, "acme/category/c1.png", *input.Key)

			return &s3.DeleteObjectOutput{}, nil
		}).Times(2)

	require.NoError(t, svc.DeleteByURL(context.Background(), "https://cdn.acme.test/acme/category/c1.png"))
	require.NoError(t, svc.DeleteByURL(context.Background(), "https://s3.acme.test/catalogue/acme/category/c1.png"))
	require.NoError(t, svc.DeleteByURL(context.Background(), "https://elsewhere.test/x.png"))
}
