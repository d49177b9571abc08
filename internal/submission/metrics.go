package submission

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "project-service/pkg/errors"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "project_submissions_total",
		Help: "Project create, update, delete and status operations by outcome.",
	}, []string{"operation", "result"})

	filesPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "project_files_placed_total",
		Help: "Uploaded files written to storage, by role.",
	}, []string{"role"})

	rollbackFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "project_rollback_files_total",
		Help: "Files removed or left behind while rolling back a failed submission.",
	}, []string{"result"})
)

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = strings.ToLower(apperrors.CodeOf(err))
	}
	submissionsTotal.WithLabelValues(operation, result).Inc()
}
