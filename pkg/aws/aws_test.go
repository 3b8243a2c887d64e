package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSecrets map[string]string

func (s staticSecrets) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := s[name]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func TestGetSecretMap(t *testing.T) {
	sm := staticSecrets{
		"receipt/DB_CREDENTIALS": `{"POSTGRES_USER":"billforge","POSTGRES_PASSWORD":"pw"}`,
		"broken":                 `not json`,
	}

	m, err := GetSecretMap(context.Background(), sm, "receipt/DB_CREDENTIALS")
	require.NoError(t, err)
	assert.Equal(t, "billforge", m["POSTGRES_USER"])

	_, err = GetSecretMap(context.Background(), sm, "broken")
	assert.Error(t, err)

	_, err = GetSecretMap(context.Background(), sm, "missing")
	assert.Error(t, err)
}

func TestEventTypeOf(t *testing.T) {
	assert.Equal(t, "receipt.printed", eventTypeOf([]byte(`{"event_type":"receipt.printed","receipt_number":"R-1"}`)))
	assert.Equal(t, "", eventTypeOf([]byte(`plain text`)))
	assert.Equal(t, "", eventTypeOf([]byte(`{"other":1}`)))
}

func TestMetricsClient_NilIsDisabled(t *testing.T) {
	var m *MetricsClient
	assert.False(t, m.IsEnabled())
	assert.NoError(t, m.RecordCount(context.Background(), MetricPrintSucceeded, nil))
	assert.NoError(t, m.RecordLatency(context.Background(), MetricPrintLatency, time.Second, nil))
}

func TestCloudWatchLogsClient_DisabledWriteIsNoop(t *testing.T) {
	c := &CloudWatchLogsClient{}
	n, err := c.Write([]byte("line"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestNewS3Archiver_EmptyBucket(t *testing.T) {
	assert.Nil(t, NewS3Archiver(nil, ""))
}

func TestNewS3Archiver_KeepsBucket(t *testing.T) {
	a := NewS3Archiver(s3.New(s3.Options{Region: "us-east-1"}), "receipts")
	require.NotNil(t, a)
	assert.Equal(t, "receipts", a.bucket)
	assert.NotNil(t, a.uploader)
}
