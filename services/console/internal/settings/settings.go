// Package settings 终端客户端配置：配置文件 < 环境变量 < 命令行
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barengs/smp/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 SMP_CONSOLE_TOKEN
const EnvPrefix = "SMP_CONSOLE"

// Settings 运行参数
type Settings struct {
	ConfigPath string
	Server     string
	Token      string
	RoleID     int64
	Locale     string
	Timeout    time.Duration
	LogFile    string
}

// Flags 注册命令行参数
func Flags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "配置文件路径，读取其中的 console 段")
	fs.StringP("server", "s", "", "权限服务地址")
	fs.StringP("token", "t", "", "Bearer 令牌")
	fs.Int64P("role", "r", 0, "角色 ID")
	fs.StringP("locale", "l", "", "标题语言")
	fs.Int("timeout", 0, "请求超时秒数")
	fs.String("log-file", "", "日志文件，为空时不输出日志")
}

// Load 解析参数并合并配置
func Load(fs *pflag.FlagSet, args []string) (*Settings, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("server", "http://127.0.0.1:8083")
	v.SetDefault("timeout", 10)

	configPath, _ := fs.GetString("config")
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		applyConsole(v, &cfg.Console, cfg.I18n.BaseLocale)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, name := range []string{"server", "token", "role", "locale", "timeout", "log-file"} {
		if err := v.BindPFlag(name, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	s := &Settings{
		ConfigPath: configPath,
		Server:     strings.TrimSpace(v.GetString("server")),
		Token:      v.GetString("token"),
		RoleID:     v.GetInt64("role"),
		Locale:     v.GetString("locale"),
		Timeout:    time.Duration(v.GetInt("timeout")) * time.Second,
		LogFile:    v.GetString("log-file"),
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// applyConsole 配置文件中的值作为默认值，可被环境变量与命令行覆盖
func applyConsole(v *viper.Viper, c *config.ConsoleConfig, baseLocale string) {
	if c.Server != "" {
		v.SetDefault("server", c.Server)
	}
	if c.Token != "" {
		v.SetDefault("token", c.Token)
	}
	if c.RoleID != 0 {
		v.SetDefault("role", c.RoleID)
	}
	switch {
	case c.Locale != "":
		v.SetDefault("locale", c.Locale)
	case baseLocale != "":
		v.SetDefault("locale", baseLocale)
	}
	if c.Timeout > 0 {
		v.SetDefault("timeout", c.Timeout)
	}
}

func (s *Settings) validate() error {
	if s.Server == "" {
		return errors.New("server is required")
	}
	if s.RoleID <= 0 {
		return errors.New("role id is required (--role)")
	}
	if s.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
