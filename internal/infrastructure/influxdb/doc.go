// Package influxdb is the optional telemetry sink: print job outcomes,
// heartbeat snapshots, and reconnect events written as time-series
// points over the official influxdb-client-go v2 library.
//
// Writes are non-blocking and batched (batch_size / flush_interval in
// config.yaml); a slow or unreachable InfluxDB never delays a print
// job. Async write failures surface on the SetOnError callback.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteJobOutcome("printer-front-01", "order-123", 1, "completed", 0.84)
//
// All methods are safe for concurrent use.
package influxdb
