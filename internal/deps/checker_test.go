package deps

import (
	"os"
	"path/filepath"
	"storyshot-ai/config"
	"strings"
	"testing"
)

func TestMissingCredentials(t *testing.T) {
	conf := config.Default()
	conf.Openai.ApiKey = "sk"
	missing := MissingCredentials(conf)
	// 默认配置：text=openai, image=gemini, translate=llm, video=placeholder, analyze=gemini
	if len(missing) != 2 || missing[0].Capability != "image" || missing[1].Capability != "analyze" {
		t.Fatalf("missing = %+v", missing)
	}

	conf.Gemini.ApiKey = "g"
	conf.App.TranslateProvider = "volcengine"
	conf.Volcengine.AccessKeyId = "ak"
	if missing = MissingCredentials(conf); len(missing) != 1 || missing[0].Provider != "volcengine" {
		t.Fatalf("missing = %+v", missing)
	}
}

func TestCheckDependencyCreatesAssetDir(t *testing.T) {
	conf := config.Default()
	conf.Storage.LocalDir = filepath.Join(t.TempDir(), "a", "b")
	if err := CheckDependency(conf); err != nil {
		t.Fatalf("CheckDependency() err = %v", err)
	}
	if info, err := os.Stat(conf.Storage.LocalDir); err != nil || !info.IsDir() {
		t.Fatalf("asset dir not created: %v", err)
	}
}

func TestCheckDatabase(t *testing.T) {
	if err := checkDatabase(config.Database{Driver: "memory"}); err != nil {
		t.Fatalf("memory driver err = %v", err)
	}
	// 无法解析的dsn在连接前就失败，不会走到建表
	err := checkDatabase(config.Database{Driver: "mysql", Dsn: "not-a-dsn"})
	if err == nil || !strings.Contains(err.Error(), "连接数据库失败") {
		t.Fatalf("bad dsn err = %v", err)
	}
}
