package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the root of configs/config.yaml.
type Bootstrap struct {
	Server  *Server  `json:"server"`
	Data    *Data    `json:"data"`
	Dedup   *Dedup   `json:"dedup"`
	Judge   *Judge   `json:"judge"`
	Storage *Storage `json:"storage"`
	Screen  *Screen  `json:"screen"`
	Log     *Log     `json:"log"`
}

type Server struct {
	Http *Server_HTTP `json:"http"`
	Grpc *Server_GRPC `json:"grpc"`
}

type Server_HTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
	// MaxUploadBytes bounds the request body of upload endpoints.
	MaxUploadBytes int64 `json:"max_upload_bytes"`
}

type Server_GRPC struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
}

type Data_Database struct {
	Driver string     `json:"driver"`
	Source string     `json:"source"`
	Pool   *Data_Pool `json:"pool"`
	// MigrationsDir is a path to the migration files, relative to the working directory.
	MigrationsDir string `json:"migrations_dir"`
}

type Data_Pool struct {
	MaxOpenConns    int32    `json:"max_open_conns"`
	MinIdleConns    int32    `json:"min_idle_conns"`
	MaxConnLifetime Duration `json:"max_conn_lifetime"`
	MaxConnIdleTime Duration `json:"max_conn_idle_time"`
}

type Data_Redis struct {
	Network      string   `json:"network"`
	Addr         string   `json:"addr"`
	Password     string   `json:"password"`
	Db           int      `json:"db"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
}

// Dedup configures the duplicate detection pipeline.
type Dedup struct {
	HashScheme           string   `json:"hash_scheme"` // grid | row
	SimilarityThreshold  float64  `json:"similarity_threshold"`
	CandidateCap         int      `json:"candidate_cap"`
	RejectThreshold      float64  `json:"reject_threshold"`
	JudgeConfidenceFloor float64  `json:"judge_confidence_floor"`
	AllowDegradedCompare bool     `json:"allow_degraded_compare"`
	BatchMaxCalls        int      `json:"batch_max_calls"`
	BatchWorkers         int      `json:"batch_workers"`
	VerdictCacheTTL      Duration `json:"verdict_cache_ttl"`
	BloomKey             string   `json:"bloom_key"`
	BloomBits            uint     `json:"bloom_bits"`
	BloomHashFuncs       uint     `json:"bloom_hash_funcs"`
}

// Judge selects and configures the AI similarity judge.
type Judge struct {
	Provider string   `json:"provider"` // none | groq | openai | vllm | ollama
	BaseURL  string   `json:"base_url"`
	Model    string   `json:"model"`
	APIKey   string   `json:"api_key"`
	Timeout  Duration `json:"timeout"`
}

// Storage lists content store backends in priority order.
type Storage struct {
	Backends []string       `json:"backends"` // minio | ipfs
	Minio    *Storage_MinIO `json:"minio"`
	Ipfs     *Storage_IPFS  `json:"ipfs"`
}

type Storage_MinIO struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	BucketName      string `json:"bucket_name"`
	UseSSL          bool   `json:"use_ssl"`
}

type Storage_IPFS struct {
	ApiURL     string   `json:"api_url"`
	GatewayURL string   `json:"gateway_url"`
	Jwt        string   `json:"jwt"`
	Timeout    Duration `json:"timeout"`
}

// Screen configures the listing-text blocklist.
type Screen struct {
	Enabled bool     `json:"enabled"`
	Terms   []string `json:"terms"` // seed terms merged with the stored blocklist
}

type Log struct {
	Level string `json:"level"`
}

// Duration accepts "15s"-style strings or a number of seconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value * float64(time.Second))
	case string:
		if value == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	case nil:
		d.Duration = 0
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// AsDuration mirrors durationpb for call sites.
func (d Duration) AsDuration() time.Duration {
	return d.Duration
}
