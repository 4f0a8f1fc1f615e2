package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"syl-optimizer/internal/compliance"
)

//go:embed default.yaml
var embeddedDefaultConfig []byte

//go:embed default_env.example
var embeddedEnvExample []byte

//go:embed default_rules/compliance.yaml
var embeddedComplianceRules []byte

func Load(pathArg, cwd string) (*Config, *Paths, error) {
	paths, err := resolvePaths(pathArg)
	if err != nil {
		return nil, nil, err
	}
	if err := ensureBootstrap(paths); err != nil {
		return nil, nil, err
	}

	raw, err := os.ReadFile(paths.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败（%s）：%w", paths.ConfigPath, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, nil, fmt.Errorf("配置文件格式错误（%s）：%w", paths.ConfigPath, err)
	}
	cfg.applyDefaults()

	paths.ConfigSource = paths.ConfigPath
	paths.ResolvedRulesPath = expandPath(cfg.RulesFile, paths.HomeDir, cwd)
	if err := ensureFile(paths.ResolvedRulesPath, embeddedComplianceRules, 0o644); err != nil {
		return nil, nil, err
	}
	return cfg, paths, nil
}

func resolvePaths(configArg string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("读取用户目录失败：%w", err)
	}
	root := filepath.Join(home, ".syl-optimizer")
	configPath := filepath.Join(root, "config.yaml")
	if strings.TrimSpace(configArg) != "" {
		configPath = expandPath(configArg, home, "")
	}

	return &Paths{
		HomeDir:    home,
		RootDir:    root,
		ConfigPath: configPath,
		RulesPath:  filepath.Join(root, "rules", "compliance.yaml"),
		EnvPath:    filepath.Join(root, ".env"),
		EnvExample: filepath.Join(root, ".env.example"),
	}, nil
}

func ensureBootstrap(paths *Paths) error {
	if err := os.MkdirAll(filepath.Dir(paths.ConfigPath), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败：%w", err)
	}
	if err := ensureFile(paths.ConfigPath, embeddedDefaultConfig, 0o644); err != nil {
		return err
	}
	if err := ensureFile(paths.EnvExample, embeddedEnvExample, 0o644); err != nil {
		return err
	}
	return ensureFile(paths.RulesPath, embeddedComplianceRules, 0o644)
}

func ensureFile(path string, data []byte, mode os.FileMode) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("文件路径为空")
	}
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败（%s）：%w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("写入默认文件失败（%s）：%w", path, err)
	}
	return nil
}

func expandPath(v, home, cwd string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if strings.HasPrefix(v, "~/") {
		return filepath.Join(home, v[2:])
	}
	if filepath.IsAbs(v) {
		return v
	}
	if strings.TrimSpace(cwd) != "" {
		return filepath.Join(cwd, v)
	}
	return v
}

func ReadComplianceRules(path string) (compliance.Rules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return compliance.Rules{}, fmt.Errorf("读取规则文件失败（%s）：%w", path, err)
	}
	rules := compliance.Rules{}
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return compliance.Rules{}, fmt.Errorf("规则文件格式错误（%s）：%w", path, err)
	}
	rules.ApplyDefaults()
	return rules, nil
}
