package datagen

import "testing"

func TestProgressReporterCountsRows(t *testing.T) {
	p := NewProgressReporter("outbound_log", 0, 3)
	for i := 0; i < 7; i++ {
		p.Update(1)
	}
	p.Update(5)
	if p.Rows() != 12 {
		t.Errorf("Expected 12 rows, got %d", p.Rows())
	}
}

func TestProgressReporterDefaultInterval(t *testing.T) {
	p := NewProgressReporter("inbound_log", 25000, 0)
	if p.progressInterval != DefaultProgressInterval {
		t.Errorf("Expected interval %d, got %d", DefaultProgressInterval, p.progressInterval)
	}
}

func TestProgressReporterPercent(t *testing.T) {
	p := NewProgressReporter("inbound_log", 200, 50)
	p.Update(50)
	if got := p.Percent(); got != 25 {
		t.Errorf("Expected 25 percent, got %f", got)
	}

	unknown := NewProgressReporter("vehicle_hygiene_log", 0, 50)
	unknown.Update(50)
	if got := unknown.Percent(); got != 0 {
		t.Errorf("Expected 0 percent for unknown total, got %f", got)
	}
}
