package conf

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{`"15s"`, 15 * time.Second, false},
		{`"1m30s"`, 90 * time.Second, false},
		{`2`, 2 * time.Second, false},
		{`0.5`, 500 * time.Millisecond, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"soon"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		var d Duration
		err := json.Unmarshal([]byte(tt.in), &d)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Unmarshal(%s): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if d.AsDuration() != tt.want {
			t.Errorf("Unmarshal(%s) = %v; want %v", tt.in, d.Duration, tt.want)
		}
	}
}

func TestBootstrap_Unmarshal(t *testing.T) {
	raw := `{
		"server": {"http": {"addr": "0.0.0.0:8000", "timeout": "10s"}},
		"dedup": {"candidate_cap": 100, "similarity_threshold": 0.85, "verdict_cache_ttl": "24h"},
		"judge": {"provider": "ollama", "timeout": 60},
		"storage": {"backends": ["minio", "ipfs"]}
	}`
	var bc Bootstrap
	if err := json.Unmarshal([]byte(raw), &bc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if bc.Server.Http.Timeout.AsDuration() != 10*time.Second {
		t.Errorf("http timeout = %v", bc.Server.Http.Timeout)
	}
	if bc.Dedup.VerdictCacheTTL.AsDuration() != 24*time.Hour {
		t.Errorf("verdict ttl = %v", bc.Dedup.VerdictCacheTTL)
	}
	if bc.Judge.Timeout.AsDuration() != time.Minute {
		t.Errorf("judge timeout = %v", bc.Judge.Timeout)
	}
	if len(bc.Storage.Backends) != 2 || bc.Storage.Backends[0] != "minio" {
		t.Errorf("backends = %v", bc.Storage.Backends)
	}
}
