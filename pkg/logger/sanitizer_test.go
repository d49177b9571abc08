package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLogMessage(t *testing.T) {
	cases := map[string]string{
		"failed to connect: host=db user=app password=hunter2 dbname=projects": "failed to connect: host=db user=app password=[REDACTED] dbname=projects",
		"dial pgx5://app:hunter2@db:5432/projects":                              "dial pgx5://app:[REDACTED]@db:5432/projects",
		"Authorization: Bearer abc.def.ghi":                                     "Authorization: Bearer [REDACTED]",
		"s3: access_key_id=AKIA123 region=ap-south-1":                           "s3: access_key_id=[REDACTED] region=ap-south-1",
		"slug \"green-acres\" is already in use":                                "slug \"green-acres\" is already in use",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeLogMessage(in), in)
	}
}

func TestSanitizeMap(t *testing.T) {
	got := SanitizeMap(map[string]any{
		"slug":         "palm-grove",
		"jwtSecret":    "whatever",
		"error":        "password=hunter2",
		"filesWritten": 3,
	})

	assert.Equal(t, "palm-grove", got["slug"])
	assert.Equal(t, redactedPlaceholder, got["jwtSecret"])
	assert.Equal(t, "password="+redactedPlaceholder, got["error"])
	assert.Equal(t, 3, got["filesWritten"])
	assert.Nil(t, SanitizeMap(nil))
}
