package capture

import (
	"errors"
	"testing"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/config"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/fs"
)

func testConfig() *config.Config {
	return &config.Config{
		OutDirectory: "/captures",
		BaseName:     "acme",
		Instance:     "np",
		TimeStr:      "20260830-1200",
	}
}

const usersJSON = `[
  {
    "user": {"targetName": "bsmith", "firstName": "Bob", "site": {"name": "HQ"}},
    "devices": [
      {
        "name": "Work Phone",
        "targetName": "bsmith|Work Phone",
        "timeframes": {"count": 2, "total": 2, "data": [
          {"name": "Weekdays"}, {"name": "Weekends"}
        ]}
      },
      {"name": "Work Email", "targetName": "bsmith|Work Email",
       "timeframes": {"count": 0, "total": 0}}
    ]
  }
]`

const groupsJSON = `[
  {
    "group": {"targetName": "Ops", "observers": {"total": 1, "data": [{"name": "x"}]}},
    "shifts": [
      {"name": "Day", "members": {"count": 1, "total": 1, "data": [
        {"position": 1, "recipient": {"recipientType": "PERSON", "targetName": "bsmith"}}
      ]}},
      {"name": "Night", "members": {"count": 0, "total": 0}}
    ]
  }
]`

func setupFiles(t *testing.T, files map[string]string) {
	t.Helper()
	fs.SetFS(fs.SetupTestDir(files))
	t.Cleanup(fs.ResetFS)
}

func TestReadSites(t *testing.T) {
	setupFiles(t, map[string]string{
		"/captures/acme.np.sites.20260830-1200.json": `[{"name":"HQ","timezone":"US/Pacific"},{"name":"Lab"}]`,
	})

	records, err := NewReader(testConfig()).Read(FileSites)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Kind != KindSite || records[0].Str("name") != "HQ" {
		t.Errorf("first record = %+v", records[0])
	}
	// capture order preserved
	if records[1].Str("name") != "Lab" {
		t.Errorf("order not preserved: %+v", records[1])
	}
}

func TestReadUsersNormalizesDevicesAndTimeframes(t *testing.T) {
	setupFiles(t, map[string]string{
		"/captures/acme.np.users.20260830-1200.json": usersJSON,
	})

	records, err := NewReader(testConfig()).Read(FileUsers)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	user := records[0]
	if user.Kind != KindUser || user.Str("targetName") != "bsmith" {
		t.Fatalf("user record = %+v", user)
	}
	if len(user.Children) != 2 {
		t.Fatalf("got %d devices, want 2", len(user.Children))
	}

	phone := user.Children[0]
	if phone.Kind != KindDevice || phone.Str("name") != "Work Phone" {
		t.Errorf("first device = %+v", phone)
	}
	if len(phone.Children) != 2 {
		t.Fatalf("got %d timeframes, want 2", len(phone.Children))
	}
	if phone.Children[0].Kind != KindTimeframe || phone.Children[0].Str("name") != "Weekdays" {
		t.Errorf("first timeframe = %+v", phone.Children[0])
	}
	// the envelope itself must not survive normalization
	if phone.Has("timeframes") {
		t.Error("timeframes envelope should be removed from device fields")
	}

	email := user.Children[1]
	if len(email.Children) != 0 {
		t.Errorf("empty timeframe envelope should yield no children: %+v", email.Children)
	}
}

func TestReadGroupsNormalizesShiftsAndMembers(t *testing.T) {
	setupFiles(t, map[string]string{
		"/captures/acme.np.groups.20260830-1200.json": groupsJSON,
	})

	records, err := NewReader(testConfig()).Read(FileGroups)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	group := records[0]
	if group.Kind != KindGroup || group.Str("targetName") != "Ops" {
		t.Fatalf("group record = %+v", group)
	}
	if len(group.Children) != 2 {
		t.Fatalf("got %d shifts, want 2", len(group.Children))
	}

	day := group.Children[0]
	if day.Kind != KindShift || day.Str("name") != "Day" {
		t.Errorf("first shift = %+v", day)
	}
	members, ok := day.Fields["members"].([]any)
	if !ok || len(members) != 1 {
		t.Fatalf("members envelope not flattened: %+v", day.Fields["members"])
	}

	night := group.Children[1]
	if night.Has("members") {
		t.Error("empty members envelope should be dropped")
	}
}

func TestReadFileMissing(t *testing.T) {
	setupFiles(t, map[string]string{})

	_, err := NewReader(testConfig()).Read(FileSites)
	if xmerrors.GetCode(err) != xmerrors.ErrCodeFileMissing {
		t.Errorf("expected FileMissing, got %v", err)
	}
}

func TestReadParseError(t *testing.T) {
	setupFiles(t, map[string]string{
		"/captures/acme.np.sites.20260830-1200.json": `{"not":"an array"}`,
	})

	_, err := NewReader(testConfig()).Read(FileSites)
	if xmerrors.GetCode(err) != xmerrors.ErrCodeParseError {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestReadSchemaMismatch(t *testing.T) {
	tests := []struct {
		name    string
		kind    FileKind
		file    string
		content string
	}{
		{"non-object element", FileSites, "/captures/acme.np.sites.20260830-1200.json", `[42]`},
		{"missing user envelope", FileUsers, "/captures/acme.np.users.20260830-1200.json", `[{"devices":[]}]`},
		{"missing group envelope", FileGroups, "/captures/acme.np.groups.20260830-1200.json", `[{"shifts":[]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupFiles(t, map[string]string{tt.file: tt.content})
			_, err := NewReader(testConfig()).Read(tt.kind)
			if xmerrors.GetCode(err) != xmerrors.ErrCodeSchemaMismatch {
				t.Errorf("expected SchemaMismatch, got %v", err)
			}
		})
	}
}

func TestEnvelopeData(t *testing.T) {
	if EnvelopeData(nil) != nil {
		t.Error("nil envelope should yield nil")
	}
	if EnvelopeData("bogus") != nil {
		t.Error("non-map envelope should yield nil")
	}
	if EnvelopeData(map[string]any{"total": float64(0), "data": []any{1}}) != nil {
		t.Error("zero total should yield nil")
	}
	got := EnvelopeData(map[string]any{"total": float64(2), "data": []any{"a", "b"}})
	if len(got) != 2 {
		t.Errorf("got %v, want two entries", got)
	}
}

func TestErrorsAreRestoreErrors(t *testing.T) {
	setupFiles(t, map[string]string{})
	_, err := NewReader(testConfig()).Read(FileUsers)

	var restoreErr *xmerrors.RestoreError
	if !errors.As(err, &restoreErr) {
		t.Fatalf("reader errors should be RestoreErrors, got %T", err)
	}
}
