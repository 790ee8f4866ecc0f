package envcheck

type Config struct {
	Version      int            `yaml:"version"`
	Project      ProjectConfig  `yaml:"project"`
	Env          EnvConfig      `yaml:"env,omitempty"`
	Paths        PathsConfig    `yaml:"paths,omitempty"`
	Database     string         `yaml:"database,omitempty"`
	Docker       DockerConfig   `yaml:"docker,omitempty"`
	CustomChecks []CustomCheck  `yaml:"customChecks,omitempty"`
	Vars         map[string]any `yaml:"vars,omitempty"`
}

type ProjectConfig struct {
	Name       string `yaml:"name"`
	Language   string `yaml:"language"`
	MinVersion string `yaml:"minVersion,omitempty"`
}

type EnvConfig struct {
	Required []string `yaml:"required,omitempty"`
	Dotenv   string   `yaml:"dotenv,omitempty"`
}

type PathsConfig struct {
	Directories []string `yaml:"directories,omitempty"`
	Files       []string `yaml:"files,omitempty"`
}

type DockerConfig struct {
	Required bool            `yaml:"required"`
	Services []DockerService `yaml:"services,omitempty"`
}

type DockerService struct {
	ContainerName string `yaml:"containerName"`
}

type CustomCheck struct {
	Name           string `yaml:"name"`
	CheckCode      string `yaml:"checkCode,omitempty"`
	Run            string `yaml:"run,omitempty"`
	Expect         string `yaml:"expect,omitempty"`
	Timeout        string `yaml:"timeout,omitempty"`
	SuccessMessage string `yaml:"successMessage,omitempty"`
	FailureMessage string `yaml:"failureMessage,omitempty"`
}

const (
	LanguagePython = "python"
	LanguageNode   = "node"
	LanguageGo     = "go"
)

const (
	DatabasePostgres = "postgresql"
	DatabaseMySQL    = "mysql"
	DatabaseMongo    = "mongodb"
	DatabaseRedis    = "redis"
)

var (
	supportedLanguages = []string{LanguagePython, LanguageNode, LanguageGo}
	supportedDatabases = []string{DatabasePostgres, DatabaseMySQL, DatabaseMongo, DatabaseRedis}
)
