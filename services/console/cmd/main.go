package main

import (
	"fmt"
	"os"

	"github.com/barengs/smp/pkg/config"
	"github.com/barengs/smp/pkg/logger"
	"github.com/barengs/smp/services/console/internal/client"
	"github.com/barengs/smp/services/console/internal/settings"
	"github.com/barengs/smp/services/console/internal/treeview"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	fs := pflag.NewFlagSet("smp-console", pflag.ExitOnError)
	settings.Flags(fs)

	s, err := settings.Load(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(2)
	}

	// 终端界面占用标准输出，日志只写文件
	if s.LogFile != "" {
		if err := logger.Init(&config.LogConfig{
			Level:    "debug",
			Format:   "json",
			Output:   "file",
			Filename: s.LogFile,
			MaxSize:  10,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
			os.Exit(1)
		}
	} else {
		logger.Set(zap.NewNop())
	}
	defer logger.Sync()

	c := client.New(s.Server, s.Token, s.Timeout)
	perms, err := c.Permissions(s.RoleID)
	if err != nil {
		logger.Error("获取权限树失败", zap.Int64("roleId", s.RoleID), zap.Error(err))
		fmt.Fprintf(os.Stderr, "获取权限树失败: %v\n", err)
		os.Exit(1)
	}
	logger.Info("权限树已加载",
		zap.String("server", s.Server),
		zap.Int64("roleId", s.RoleID),
		zap.Int("selected", len(perms.Selected)),
	)

	m := treeview.New(perms.Menus, perms.Selected, s.RoleID, s.Locale, c)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		logger.Error("终端界面异常退出", zap.Error(err))
		fmt.Fprintf(os.Stderr, "终端界面异常退出: %v\n", err)
		os.Exit(1)
	}

	if fm, ok := final.(*treeview.Model); ok && fm.Dirty() {
		logger.Warn("存在未保存的修改", zap.Strings("keys", fm.Keys()))
		fmt.Fprintln(os.Stderr, "存在未保存的修改，已放弃")
	}
}
