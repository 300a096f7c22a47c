package agent

import (
	"errors"
	"fmt"

	"github.com/gmyun1999/MY-LOG-BE/domain"
)

// LogInputType - shape of the log lines the collector tails.
type LogInputType string

const (
	InputPlain LogInputType = "PLAIN"
	InputJSON  LogInputType = "JSON"
)

// FilterOperator ...
type FilterOperator string

const (
	OpEquals    FilterOperator = "EQUALS"
	OpNotEquals FilterOperator = "NOT_EQUALS"
)

// JSONFieldMapping - one user-defined field extracted from JSON logs.
type JSONFieldMapping struct {
	Name     string `json:"name" yaml:"name"`
	JSONPath string `json:"json_path" yaml:"json_path"`
}

// FilterCondition - drop or keep rule applied at the collector.
type FilterCondition struct {
	Field    string         `json:"field" yaml:"field"`
	Operator FilterOperator `json:"operator" yaml:"operator"`
	Value    string         `json:"value" yaml:"value"`
}

// CollectorContext - everything the collector config template needs.
// Plain and JSON inputs require different field sets; Validate enforces
// the split before rendering.
type CollectorContext struct {
	ProjectID string       `json:"project_id"`
	Hosts     []string     `json:"hosts"`
	LogPaths  []string     `json:"log_paths"`
	InputType LogInputType `json:"input_type"`

	// plain input only
	MultilinePattern  string   `json:"multiline_pattern,omitempty"`
	CustomPlainFields []string `json:"custom_plain_fields,omitempty"`

	// json input only
	TimestampField    string             `json:"timestamp_field,omitempty"`
	TimestampJSONPath string             `json:"timestamp_json_path,omitempty"`
	LogLevel          string             `json:"log_level,omitempty"`
	LogLevelJSONPath  string             `json:"log_level_json_path,omitempty"`
	CustomJSONFields  []JSONFieldMapping `json:"custom_json_fields,omitempty"`

	Filters []FilterCondition `json:"filters,omitempty"`
}

// Validate ...
func (c *CollectorContext) Validate() error {
	if c.ProjectID == "" {
		return errors.New("collector context: project id is required")
	}
	if len(c.Hosts) == 0 {
		return errors.New("collector context: at least one host is required")
	}
	if len(c.LogPaths) == 0 {
		return errors.New("collector context: at least one log path is required")
	}
	switch c.InputType {
	case InputPlain:
		if c.MultilinePattern == "" {
			return errors.New("collector context: plain input requires multiline_pattern")
		}
	case InputJSON:
		if c.TimestampField == "" || c.TimestampJSONPath == "" {
			return errors.New("collector context: json input requires timestamp field and path")
		}
		if c.LogLevel == "" || c.LogLevelJSONPath == "" {
			return errors.New("collector context: json input requires log level field and path")
		}
	default:
		return fmt.Errorf("collector context: unknown input type %q", c.InputType)
	}
	return nil
}

// RouterContext - parameters for the router config that ships collected
// lines into the message broker.
type RouterContext struct {
	ProjectID string `json:"project_id"`
	BeatsPort int    `json:"beats_port"`

	MQHost         string `json:"mq_host"`
	MQPort         int    `json:"mq_port"`
	MQUser         string `json:"mq_user"`
	MQPassword     string `json:"mq_password"`
	MQVHost        string `json:"mq_vhost"`
	MQExchange     string `json:"mq_exchange"`
	MQExchangeType string `json:"mq_exchange_type"`
	MQRoutingKey   string `json:"mq_routing_key"`
	MQPersistent   bool   `json:"mq_persistent"`
	MQHeartbeat    int    `json:"mq_heartbeat"`
}

// ApplyDefaults ...
func (c *RouterContext) ApplyDefaults() {
	if c.BeatsPort == 0 {
		c.BeatsPort = 5044
	}
	if c.MQHeartbeat == 0 {
		c.MQHeartbeat = 30
	}
}

// Validate ...
func (c *RouterContext) Validate() error {
	if c.ProjectID == "" {
		return errors.New("router context: project id is required")
	}
	if c.MQHost == "" || c.MQPort == 0 {
		return errors.New("router context: broker host and port are required")
	}
	if c.MQExchange == "" || c.MQRoutingKey == "" {
		return errors.New("router context: exchange and routing key are required")
	}
	return nil
}

// BootstrapContext - values baked into the setup script handed to the
// operator of the monitored host.
type BootstrapContext struct {
	BaseStaticURL      string
	CollectorConfigURL string
	RouterConfigURL    string
	CollectorDir       string
	RouterDir          string
	Timestamp          int64
	Platform           domain.PlatformType
}

// ScriptName ...
func (c *BootstrapContext) ScriptName() string {
	if c.Platform == domain.PlatformLinux {
		return "setup-agent.sh"
	}
	return "setup-agent.bat"
}

// RenderedConfig - one generated artifact ready for upload.
type RenderedConfig struct {
	Filename string
	Content  []byte
}
