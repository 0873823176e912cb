package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"clipforge/pipeline-go/internal/motion"
)

const (
	defaultConfigPath = "/etc/clipforge/config.ini"
	configPathEnv     = "CLIPFORGE_CONFIG"
)

type Config struct {
	Hostname         string
	AppEnv           string
	BaseOutputFolder string
	WorkFolder       string

	DBURL      string
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RabbitMQHost     string
	RabbitMQPort     int
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQVHost    string

	OpenAIAPIKey string
	WhisperModel string

	GeminiAPIKey string
	GeminiModel  string

	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string
	TTSCommand        string // local fallback synthesizer, e.g. "piper --model ..."

	LipSyncCommand    string
	LipSyncCheckpoint string
	FacePath          string // default face footage for assembled clips
	OutputFPS         float64

	MotionGain             float64
	MotionActivation       float64
	MotionOnsetTolerance   float64
	MotionSpeakingRMSRatio float64
}

func Load() (Config, error) {
	// Local overrides (API keys etc.) may live in a .env next to the binary.
	_ = godotenv.Load()

	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = defaultConfigPath
	}

	ini, err := readINI(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", configPath, err)
	}

	cfg := Config{}
	cfg.Hostname = ini.get("app", "hostname")
	if cfg.Hostname == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.Hostname = host
		}
	}
	cfg.AppEnv = ini.getDefault("app", "env", "production")
	cfg.BaseOutputFolder = ini.get("app", "base_output_folder")
	cfg.WorkFolder = ini.getDefault("app", "work_folder", filepath.Join(os.TempDir(), "clipforge"))

	cfg.DBURL = firstNonEmpty(ini.get("db", "url"), ini.get("db", "database_url"), os.Getenv("DATABASE_URL"))
	cfg.DBHost = ini.getDefault("db", "host", "127.0.0.1")
	cfg.DBPort = ini.getIntDefault("db", "port", 5432)
	cfg.DBName = ini.getDefault("db", "name", "clipforge")
	cfg.DBUser = ini.getDefault("db", "user", "clipforge")
	cfg.DBPassword = ini.get("db", "password")
	cfg.DBSSLMode = ini.getDefault("db", "sslmode", "prefer")

	cfg.RabbitMQHost = ini.getDefault("rabbitmq", "host", "127.0.0.1")
	cfg.RabbitMQPort = ini.getIntDefault("rabbitmq", "port", 5672)
	cfg.RabbitMQUser = ini.getDefault("rabbitmq", "user", "guest")
	cfg.RabbitMQPassword = ini.getDefault("rabbitmq", "password", "guest")
	cfg.RabbitMQVHost = ini.getDefault("rabbitmq", "vhost", "/")

	cfg.OpenAIAPIKey = firstNonEmpty(ini.get("openai", "api_key"), os.Getenv("OPENAI_API_KEY"))
	cfg.WhisperModel = ini.getDefault("openai", "whisper_model", "whisper-1")

	cfg.GeminiAPIKey = firstNonEmpty(ini.get("gemini", "api_key"), os.Getenv("GEMINI_API_KEY"))
	cfg.GeminiModel = ini.getDefault("gemini", "model", "gemini-1.5-flash")

	cfg.ElevenLabsAPIKey = firstNonEmpty(ini.get("elevenlabs", "api_key"), os.Getenv("ELEVENLABS_API_KEY"))
	cfg.ElevenLabsVoiceID = ini.get("elevenlabs", "voice_id")
	cfg.ElevenLabsModelID = ini.getDefault("elevenlabs", "model_id", "eleven_multilingual_v2")
	cfg.TTSCommand = ini.get("tts", "command")

	cfg.LipSyncCommand = ini.get("lipsync", "command")
	cfg.LipSyncCheckpoint = ini.get("lipsync", "checkpoint")
	cfg.FacePath = ini.get("lipsync", "face_path")
	cfg.OutputFPS = ini.getFloatDefault("lipsync", "fps", 0)

	defaults := motion.DefaultParams()
	cfg.MotionGain = ini.getFloatDefault("motion", "gain", defaults.Gain)
	cfg.MotionActivation = ini.getFloatDefault("motion", "activation", defaults.Activation)
	cfg.MotionOnsetTolerance = ini.getFloatDefault("motion", "onset_tolerance", defaults.OnsetTolerance)
	cfg.MotionSpeakingRMSRatio = ini.getFloatDefault("motion", "speaking_rms_ratio", defaults.SpeakingRMSRatio)

	if cfg.BaseOutputFolder == "" {
		return cfg, errors.New("app.base_output_folder must be set in config.ini")
	}

	return cfg, nil
}

// MotionParams folds the configured overrides into the default motion tuning.
func (c Config) MotionParams() motion.Params {
	p := motion.DefaultParams()
	p.Gain = c.MotionGain
	p.Activation = c.MotionActivation
	p.OnsetTolerance = c.MotionOnsetTolerance
	p.SpeakingRMSRatio = c.MotionSpeakingRMSRatio
	return p
}

func (c Config) DBConnString() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBUser,
		c.DBPassword,
		c.DBSSLMode,
	)
}

func (c Config) RabbitMQURL() string {
	vhost := strings.TrimPrefix(c.RabbitMQVHost, "/")
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d/%s",
		c.RabbitMQUser,
		c.RabbitMQPassword,
		c.RabbitMQHost,
		c.RabbitMQPort,
		vhost,
	)
}

type iniData struct {
	sections map[string]map[string]string
}

func readINI(path string) (iniData, error) {
	file, err := os.Open(path)
	if err != nil {
		return iniData{}, err
	}
	defer file.Close()

	data := iniData{sections: map[string]map[string]string{}}
	section := "default"
	data.sections[section] = map[string]string{}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			section = strings.ToLower(section)
			if section == "" {
				return iniData{}, fmt.Errorf("invalid section header at line %d", lineNo)
			}
			if _, ok := data.sections[section]; !ok {
				data.sections[section] = map[string]string{}
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return iniData{}, fmt.Errorf("invalid line %d: %q", lineNo, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return iniData{}, fmt.Errorf("empty key at line %d", lineNo)
		}
		value = strings.TrimSpace(value)
		value = trimQuotes(value)
		data.sections[section][key] = value
	}
	if err := scanner.Err(); err != nil {
		return iniData{}, err
	}
	return data, nil
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	if value[0] == '\'' && value[len(value)-1] == '\'' {
		return value[1 : len(value)-1]
	}
	return value
}

func (ini iniData) get(section, key string) string {
	if len(ini.sections) == 0 {
		return ""
	}
	section = strings.ToLower(section)
	key = strings.ToLower(key)
	if section == "" {
		section = "default"
	}
	if values, ok := ini.sections[section]; ok {
		return values[key]
	}
	return ""
}

func (ini iniData) getDefault(section, key, fallback string) string {
	value := ini.get(section, key)
	if value == "" {
		return fallback
	}
	return value
}

func (ini iniData) getIntDefault(section, key string, fallback int) int {
	value := ini.get(section, key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (ini iniData) getFloatDefault(section, key string, fallback float64) float64 {
	value := ini.get(section, key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
