/*------------------------------------------------------------------------------
* influx.go : time-series export of arrivals
*
* Grounded on app/plot's OutENU: one influxdb point per record, written
* through a non-blocking WriteAPI and flushed in a batch. Here the record is
* an Arrival instead of an ENU displacement.
*-----------------------------------------------------------------------------*/
package telemetry

import (
	"time"

	influxdb "github.com/influxdata/influxdb-client-go/v2"

	"taupgo/internal/session"
)

// ArrivalWriter streams arrivals to InfluxDB as the "taupgo_arrival"
// measurement, tagged by phase code.
type ArrivalWriter struct {
	client influxdb.Client
	org    string
	bucket string
}

// NewArrivalWriter opens a client against url/token for org/bucket.
func NewArrivalWriter(url, token, org, bucket string) *ArrivalWriter {
	return &ArrivalWriter{client: influxdb.NewClient(url, token), org: org, bucket: bucket}
}

// Close releases the underlying client.
func (w *ArrivalWriter) Close() { w.client.Close() }

// WriteArrivals emits one point per arrival for modelName at sourceDepthKm
// and deltaDeg, flushing synchronously.
func (w *ArrivalWriter) WriteArrivals(modelName string, sourceDepthKm, deltaDeg float64, arrivals []session.Arrival) {
	writeAPI := w.client.WriteAPI(w.org, w.bucket)
	now := time.Now()
	for _, a := range arrivals {
		p := influxdb.NewPointWithMeasurement("taupgo_arrival").
			AddTag("model", modelName).
			AddTag("phase", a.PhaseCode).
			AddField("delta_deg", deltaDeg).
			AddField("source_depth_km", sourceDepthKm).
			AddField("time_s", a.T).
			AddField("spread", a.Spread).
			AddField("observability", a.Observability).
			SetTime(now)
		writeAPI.WritePoint(p)
	}
	writeAPI.Flush()
}
