package netindexer

import "testing"

func TestNewConfigAppliesReferenceDefaults(t *testing.T) {
	c := NewConfig()
	if c.Backend != "pycurl" {
		t.Fatalf("Backend = %q, want %q", c.Backend, "pycurl")
	}
	if c.Workers != 4 {
		t.Fatalf("Workers = %d, want 4", c.Workers)
	}
	if c.BatchSize != 64 {
		t.Fatalf("BatchSize = %d, want 64", c.BatchSize)
	}
	if c.OutputBatchSize != 100000 {
		t.Fatalf("OutputBatchSize = %d, want 100000", c.OutputBatchSize)
	}
	if !c.LogErrors {
		t.Fatalf("LogErrors default should be true")
	}
}

func TestNewConfigOptionsOverrideDefaults(t *testing.T) {
	c := NewConfig(WithWorkers(16), WithBatchSize(128))
	if c.Workers != 16 || c.BatchSize != 128 {
		t.Fatalf("options did not override defaults: %+v", c)
	}
}

func TestConfigValidateRequiresURLFile(t *testing.T) {
	c := NewConfig()
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected an error for a missing URLFile")
	}
	var ee *EngineError
	if !asEngineError(err, &ee) || !ee.IsConfig() {
		t.Fatalf("expected a ConfigError, got %v", err)
	}
}

func TestConfigValidateRejectsUnknownBackend(t *testing.T) {
	c := NewConfig()
	c.URLFile = "urls.txt"
	c.Logfile = "summary.log"
	c.DatafilePrefix = "out/batch"
	c.Backend = "libcurl"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected an error for an unknown backend")
	}
}

func TestConfigValidateRejectsMaxHandlesOutOfRange(t *testing.T) {
	c := NewConfig()
	c.URLFile = "urls.txt"
	c.Logfile = "summary.log"
	c.DatafilePrefix = "out/batch"
	c.MaxHandles = 0
	if err := c.Validate(); err == nil {
		t.Fatalf("expected an error for MaxHandles = 0")
	}
}

func TestConfigValidateRejectsMissingLogfile(t *testing.T) {
	c := NewConfig()
	c.URLFile = "urls.txt"
	c.DatafilePrefix = "out/batch"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected an error for a missing Logfile")
	}
}

func TestConfigValidateAcceptsWellFormedConfig(t *testing.T) {
	c := NewConfig()
	c.URLFile = "urls.txt"
	c.Logfile = "summary.log"
	c.DatafilePrefix = "out/batch"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error from a well-formed Config: %v", err)
	}
}

func TestAnalyseConfigValidateRejectsUnknownFunction(t *testing.T) {
	valid := map[string]bool{"title": true}
	a := &AnalyseConfig{FileGlob: "*.gob.gz", MaxWorkers: 4, Function: "nonsense"}
	if err := a.Validate(valid); err == nil {
		t.Fatalf("expected an error for an unknown function")
	}
}

func TestAnalyseConfigValidateAcceptsKnownFunction(t *testing.T) {
	valid := map[string]bool{"title": true}
	a := &AnalyseConfig{FileGlob: "*.gob.gz", MaxWorkers: 4, Function: "title"}
	if err := a.Validate(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func asEngineError(err error, target **EngineError) bool {
	ee, ok := err.(*EngineError)
	if !ok {
		return false
	}
	*target = ee
	return true
}
