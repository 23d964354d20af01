package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullReport = `Running 30s test @ http://127.0.0.1:8080/json
  4 threads and 20 connections
  Thread Stats   Avg      Stdev     Max   +/- Stdev
    Latency   635.91us    0.89ms  12.92ms   93.69%
    Req/Sec    56.20k     8.07k   62.00k    86.54%
  Latency Distribution
     50%  250.00us
     75%  491.00us
     90%  700.00us
     99%    5.80ms
  22464657 requests in 30.00s, 17.76GB read
  Socket errors: connect 5, read 2, write 0, timeout 10
  Non-2xx or 3xx responses: 7
Requests/sec: 748868.53
Transfer/sec:    606.33MB
`

func TestParse_FullReport(t *testing.T) {
	r := Parse(fullReport)

	assert.Equal(t, "http://127.0.0.1:8080/json", r.URL)
	assert.Equal(t, "30s", r.TestDuration)

	require.NotNil(t, r.Threads)
	require.NotNil(t, r.Connections)
	assert.Equal(t, 4, *r.Threads)
	assert.Equal(t, 20, *r.Connections)

	require.NotNil(t, r.Latency)
	assert.Equal(t, Distribution{Avg: "635.91us", Stdev: "0.89ms", Max: "12.92ms"}, *r.Latency)

	require.NotNil(t, r.ThreadRequestsPerSec)
	assert.Equal(t, Distribution{Avg: "56.20k", Stdev: "8.07k", Max: "62.00k"}, *r.ThreadRequestsPerSec)

	assert.Equal(t, map[string]string{
		"50%": "250.00us",
		"75%": "491.00us",
		"90%": "700.00us",
		"99%": "5.80ms",
	}, r.LatencyDistribution)

	require.NotNil(t, r.TotalRequests)
	require.NotNil(t, r.TotalDuration)
	assert.Equal(t, int64(22464657), *r.TotalRequests)
	assert.Equal(t, 30.0, *r.TotalDuration)
	assert.Equal(t, "17.76GB", r.DataRead)

	require.NotNil(t, r.RequestsPerSec)
	assert.Equal(t, 748868.53, *r.RequestsPerSec)
	assert.Equal(t, "606.33MB", r.TransferPerSec)

	assert.Equal(t, map[string]int{"connect": 5, "read": 2, "write": 0, "timeout": 10}, r.SocketErrors)

	require.NotNil(t, r.NonSuccess)
	assert.Equal(t, int64(7), *r.NonSuccess)
	assert.Empty(t, r.Error)
}

func TestParse_RequestsPerSecExact(t *testing.T) {
	for _, tc := range []struct {
		text string
		want float64
	}{
		{"Requests/sec: 1234.56\n", 1234.56},
		{"Requests/sec:      0.10\n", 0.10},
		{"Requests/sec: 42\n", 42},
	} {
		r := Parse(tc.text)
		require.NotNil(t, r.RequestsPerSec, tc.text)
		assert.Equal(t, tc.want, *r.RequestsPerSec)
	}
}

func TestParse_OnlySummaryLines(t *testing.T) {
	r := Parse("Requests/sec: 1234.56\nTransfer/sec: 10.00KB\n")

	assert.Equal(t, []string{"requests_per_sec", "transfer_per_sec"}, r.Keys())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"requests_per_sec": 1234.56, "transfer_per_sec": "10.00KB"}`, string(b))
}

func TestParse_SocketErrors(t *testing.T) {
	r := Parse("  Socket errors: connect 5, read 2\n")

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"connect_errors": 5, "read_errors": 2}`, string(b))
}

func TestParse_SocketErrorsSkipsMalformedItems(t *testing.T) {
	r := Parse("Socket errors: Connect 1, garbage, timeout x, Read 3\n")
	assert.Equal(t, map[string]int{"connect": 1, "read": 3}, r.SocketErrors)
}

func TestParse_Unrecognized(t *testing.T) {
	for _, text := range []string{
		"",
		"unable to connect to 127.0.0.1:9999 Connection refused\n",
		"Latency Distribution\n",
		"\x00\xff garbage",
	} {
		r := Parse(text)
		assert.True(t, r.IsEmpty(), "%q", text)

		b, err := json.Marshal(r)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(b))
	}
}

func TestParse_MinuteDuration(t *testing.T) {
	text := "Running 1m test @ http://localhost:8001/db\n" +
		"  1500 requests in 1.00m, 1.20MB read\n"
	r := Parse(text)

	assert.Equal(t, "1m", r.TestDuration)
	require.NotNil(t, r.TotalDuration)
	assert.Equal(t, 60.0, *r.TotalDuration)
	require.NotNil(t, r.TotalRequests)
	assert.Equal(t, int64(1500), *r.TotalRequests)
	assert.Equal(t, "1.20MB", r.DataRead)
}

func TestParse_CRLF(t *testing.T) {
	r := Parse("Requests/sec: 10.5\r\nTransfer/sec: 1.00MB\r\n")
	require.NotNil(t, r.RequestsPerSec)
	assert.Equal(t, 10.5, *r.RequestsPerSec)
	assert.Equal(t, "1.00MB", r.TransferPerSec)
}

func TestParse_DistributionHeaderIsNotThreadStats(t *testing.T) {
	text := "  Latency Distribution\n     50%    1.00ms\n     99%    9.00ms\n"
	r := Parse(text)

	assert.Nil(t, r.Latency)
	assert.Equal(t, map[string]string{"50%": "1.00ms", "99%": "9.00ms"}, r.LatencyDistribution)
}

func TestParse_Deterministic(t *testing.T) {
	a, err := json.Marshal(Parse(fullReport))
	require.NoError(t, err)
	b, err := json.Marshal(Parse(fullReport))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	want := Parse(fullReport)
	want.Error = "boom"

	b, err := json.Marshal(want)
	require.NoError(t, err)

	var got Record
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, want, got)
}

func TestRecord_UnmarshalJSONIgnoresUnknownKeys(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"requests_per_sec": 1.5, "future_field": true}`), &r))
	require.NotNil(t, r.RequestsPerSec)
	assert.Equal(t, 1.5, *r.RequestsPerSec)
	assert.Equal(t, []string{"requests_per_sec"}, r.Keys())
}
