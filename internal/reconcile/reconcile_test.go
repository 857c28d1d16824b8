package reconcile

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/logger"
)

func TestApply(t *testing.T) {
	records := []models.SecurityRecord{
		{Ticker: "PETR4", Price: 5.0, Volume: models.Int(100), DayChangePct: models.Float(1)},
		{Ticker: "VALE3", Price: 7.0, Volume: models.Int(200)},
		{Ticker: "OIBR3", Price: 1.0},
	}
	ds := &models.ReferenceDataset{Rows: map[models.Ticker]models.ReferenceRow{
		"PETR4": {Price: models.Float(5.2), Volume: models.Int(9000), DayChangePct: models.Float(-0.456)},
		"VALE3": {Price: models.Float(0), Volume: models.Int(-1)},
		"ITUB4": {Price: models.Float(30)},
	}}

	n := Apply(records, ds)

	if n != 2 {
		t.Fatalf("reconciled=%d want 2", n)
	}
	if records[0].Price != 5.2 || *records[0].Volume != 9000 || *records[0].DayChangePct != -0.46 {
		t.Fatalf("PETR4 not overlaid: %+v", records[0])
	}
	if records[1].Price != 7.0 || *records[1].Volume != 200 || records[1].DayChangePct != nil {
		t.Fatalf("VALE3 must keep provider values: %+v", records[1])
	}
	if records[2].Price != 1.0 || records[2].Volume != nil {
		t.Fatalf("OIBR3 must be untouched: %+v", records[2])
	}
}

func TestApply_AbsentFieldsLeaveRecordAlone(t *testing.T) {
	records := []models.SecurityRecord{{Ticker: "HBOR3", Price: 3.29, Volume: models.Int(10)}}
	ds := &models.ReferenceDataset{Rows: map[models.Ticker]models.ReferenceRow{"HBOR3": {}}}

	if n := Apply(records, ds); n != 1 {
		t.Fatalf("reconciled=%d want 1", n)
	}
	if records[0].Price != 3.29 || *records[0].Volume != 10 {
		t.Fatalf("record changed: %+v", records[0])
	}
}

func TestApply_IgnoresCeiling(t *testing.T) {
	records := []models.SecurityRecord{{Ticker: "MGLU3", Price: 9.5}}
	ds := &models.ReferenceDataset{Rows: map[models.Ticker]models.ReferenceRow{"MGLU3": {Price: models.Float(12.4)}}}
	Apply(records, ds)
	if records[0].Price != 12.4 {
		t.Fatalf("price=%v want 12.4", records[0].Price)
	}
}

func TestApply_NilDataset(t *testing.T) {
	records := []models.SecurityRecord{{Ticker: "PETR4", Price: 5}}
	if n := Apply(records, nil); n != 0 || records[0].Price != 5 {
		t.Fatalf("nil dataset must be a no-op")
	}
}

func TestApply_LogsSummary(t *testing.T) {
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("LOG_LEVEL", "info")
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	records := []models.SecurityRecord{{Ticker: "PETR4", Price: 5}}
	ds := &models.ReferenceDataset{Rows: map[models.Ticker]models.ReferenceRow{"PETR4": {Price: models.Float(5.2)}}}
	Apply(records, ds)

	out := buf.String()
	if !strings.Contains(out, `"component":"reconcile"`) || !strings.Contains(out, `"reconciled":1`) {
		t.Fatalf("summary not logged: %s", out)
	}
}
