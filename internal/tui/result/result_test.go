package result

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wrkbench/internal/stats"
)

func TestSummaryRows(t *testing.T) {
	rows := SummaryRows([]stats.TargetSummary{
		{Target: "gin", Completed: true, File: "results/gin_results.json", Endpoints: 2, MinRPS: 1, MedianRPS: 2.5, MaxRPS: 4, SocketErrors: 3, NonSuccess: 2},
		{Target: "flask", File: "results/flask_results.json"},
		{Target: "django"},
	})

	assert.Equal(t, []string{"gin", "ok", "2", "1.00", "2.50", "4.00", "0.00ms", "0.00ms", "0", "5", "results/gin_results.json"}, rows[0])
	assert.Equal(t, "partial", rows[1][1])
	assert.Equal(t, "failed", rows[2][1])
}

func TestRenderFailures(t *testing.T) {
	out := RenderFailures([]stats.TargetSummary{{Target: "gin"}, {Target: "flask", Error: "refused"}})
	assert.Contains(t, out, "flask")
	assert.Contains(t, out, "refused")
	assert.NotContains(t, out, "gin")
}
