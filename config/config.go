package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Relay         RelayConfig         `yaml:"relay"`
	UpstreamQuota UpstreamQuotaConfig `yaml:"upstream_quota"`
	UsageGate     UsageGateConfig     `yaml:"usage_gate"`
	Models        []ModelOption       `yaml:"models"`
	MongoDBName   string              `yaml:"mongo_db_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RelayConfig 는 릴레이 서버와 업스트림 completion API 호출에 대한 설정이다.
type RelayConfig struct {
	// Port 는 릴레이 HTTP 서버가 바인딩하는 포트이다. 0 이하면 8080을 사용한다.
	Port int `yaml:"port"`

	// UpstreamBaseURL 은 OpenAI 호환 completion API 의 베이스 URL 이다.
	UpstreamBaseURL string `yaml:"upstream_base_url"`

	// UpstreamTimeoutSeconds 는 업스트림 호출에 적용하는 타임아웃(초)이다.
	// 0 이하면 30초를 사용한다.
	UpstreamTimeoutSeconds int `yaml:"upstream_timeout_seconds"`

	// Temperature / MaxTokens 는 업스트림 요청에 고정으로 포함하는 샘플링 파라미터이다.
	// Temperature 가 nil 이면 0.7 을 사용한다. 0 은 유효한 설정값이다.
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
}

// UpstreamQuotaConfig 는 릴레이가 업스트림 LLM 호출에 적용하는 속도/일일 한도를 정의한다.
type UpstreamQuotaConfig struct {
	// RequestsPerMinute 는 업스트림 호출에 대한 분당 최대 요청 수이다.
	// 0 이하면 제한 없음으로 간주한다.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerDay 는 업스트림 호출에 대한 일일 최대 요청 수이다.
	// 0 이하면 제한 없음으로 간주한다.
	RequestsPerDay int `yaml:"requests_per_day"`
}

// UsageGateConfig 는 클라이언트 쪽 일일 사용량 게이트 설정이다.
type UsageGateConfig struct {
	// DailyLimit 는 하루에 허용되는 사용자 전송 횟수이다. 0 이하면 25를 사용한다.
	DailyLimit int `yaml:"daily_limit"`
}

// ModelOption is a single selectable model variant exposed to the client.
// Exactly one entry is expected to carry Default=true.
type ModelOption struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Provider    string `yaml:"provider" json:"provider"`
	Default     bool   `yaml:"default" json:"default"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// DefaultModel 은 카탈로그에서 default 로 표시된 모델을 반환한다.
// default 표시가 없으면 첫 번째 모델을, 카탈로그가 비어 있으면 gpt-4o 를 반환한다.
func (c AppConfig) DefaultModel() ModelOption {
	for _, m := range c.Models {
		if m.Default {
			return m
		}
	}
	if len(c.Models) > 0 {
		return c.Models[0]
	}
	return ModelOption{ID: "gpt-4o", Name: "GPT-4o", Provider: "openai", Default: true}
}

// ResolveModel 은 modelID 에 해당하는 카탈로그 항목을 찾고,
// 없거나 빈 문자열이면 기본 모델을 반환한다.
func (c AppConfig) ResolveModel(modelID string) ModelOption {
	if modelID != "" {
		for _, m := range c.Models {
			if m.ID == modelID {
				return m
			}
		}
	}
	return c.DefaultModel()
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
