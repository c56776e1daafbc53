package config

import "testing"

func TestDefaults(t *testing.T) {
	conf := Global()
	if conf.Database.Driver != DriverPostgres {
		t.Fatalf("expected postgres driver by default, got %q", conf.Database.Driver)
	}
	if conf.Server.Port != 8080 || conf.Server.GrpcPort != 9090 {
		t.Fatalf("unexpected ports %d/%d", conf.Server.Port, conf.Server.GrpcPort)
	}
	if conf.Relay.Workers != 8 {
		t.Fatalf("unexpected relay workers %d", conf.Relay.Workers)
	}
	if conf.Trace.Exporter != "none" {
		t.Fatalf("unexpected trace exporter %q", conf.Trace.Exporter)
	}
}
