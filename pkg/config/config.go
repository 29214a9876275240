/*
 * @Description: 统一配置管理 (手动加载 ini + 环境变量覆盖)
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2026-01-14 10:40:12
 * @LastEditors: 安知鱼
 */
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 定义所有已知的配置键
var allKeys = []string{
	KeyServerPort, KeyServerDebug, KeyJWTSecret, KeyIDSeed,
	KeyDBType, KeyDBHost, KeyDBPort, KeyDBUser, KeyDBPassword, KeyDBName, KeyDBDebug,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyLogLevel, KeyLogFile,
	KeyUploadTempDir, KeyUploadMaxSize, KeyUploadConcurrency,
	KeyStorageLocalPath, KeyStorageLocalURLPrefix,
	KeyAttachmentMaxFolderDepth,
}

const (
	KeyServerPort    = "System.Port"
	KeyServerDebug   = "System.Debug"
	KeyJWTSecret     = "System.JWTSecret"
	KeyIDSeed        = "System.IDSeed"
	KeyDBType        = "Database.Type"
	KeyDBHost        = "Database.Host"
	KeyDBPort        = "Database.Port"
	KeyDBUser        = "Database.User"
	KeyDBPassword    = "Database.Password"
	KeyDBName        = "Database.Name"
	KeyDBDebug       = "Database.Debug"
	KeyRedisAddr     = "Redis.Addr"
	KeyRedisPassword = "Redis.Password"
	KeyRedisDB       = "Redis.DB"

	KeyLogLevel = "Log.Level"
	KeyLogFile  = "Log.File"

	// 上传临时目录、单文件大小上限（字节，0 表示不限制）、批量上传并发数
	KeyUploadTempDir     = "Upload.TempDir"
	KeyUploadMaxSize     = "Upload.MaxSize"
	KeyUploadConcurrency = "Upload.Concurrency"

	KeyStorageLocalPath      = "Storage.LocalPath"
	KeyStorageLocalURLPrefix = "Storage.LocalURLPrefix"

	// 新建文件夹时允许的最大层级，0 表示不限制
	KeyAttachmentMaxFolderDepth = "Attachment.MaxFolderDepth"
)

// defaults 是在 ini 文件和环境变量都未提供时使用的内部默认值
var defaults = map[string]interface{}{
	KeyServerPort:               8091,
	KeyDBType:                   "sqlite",
	KeyDBName:                   "anheyu_attachment.db",
	KeyLogLevel:                 "info",
	KeyUploadTempDir:            "data/temp",
	KeyUploadMaxSize:            int64(0),
	KeyUploadConcurrency:        4,
	KeyStorageLocalPath:         "data/storage",
	KeyStorageLocalURLPrefix:    "/static/attachments/",
	KeyAttachmentMaxFolderDepth: 3,
}

type Config struct {
	vp *viper.Viper
}

// NewConfig 加载 data/conf.ini，并用环境变量覆盖
func NewConfig() (*Config, error) {
	return NewConfigFromFile("data/conf.ini")
}

// NewConfigFromFile 手动加载指定路径的配置文件，确保可靠性
func NewConfigFromFile(filePath string) (*Config, error) {
	vp := viper.New()
	for key, value := range defaults {
		vp.SetDefault(key, value)
	}

	// .env 是可选的，只用于本地开发时注入 ANHEYU_* 环境变量
	if err := godotenv.Load(); err == nil {
		log.Println("从 .env 文件加载了环境变量。")
	}

	// --- 步骤 1: 使用 go-ini 从文件加载配置 (作为默认值) ---
	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("提示: 未找到 %s，将创建默认配置文件。", filePath)
			if err := createDefaultConfigFile(filePath); err != nil {
				log.Printf("警告: 创建默认配置文件失败: %v，将仅依赖环境变量或内部默认值。", err)
			} else {
				log.Printf("✅ 已创建默认配置文件: %s", filePath)
				iniCfg, err = ini.Load(filePath)
				if err != nil {
					log.Printf("警告: 重新加载配置文件失败: %v", err)
				}
			}
		} else {
			return nil, fmt.Errorf("错误: 解析配置文件 '%s' 失败: %w", filePath, err)
		}
	}

	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				// 空值不覆盖内部默认值
				if strings.TrimSpace(key.Value()) == "" {
					continue
				}
				vp.Set(viperKey, key.Value())
			}
		}
		log.Printf("从 %s 文件加载了默认配置。", filePath)
	}

	// --- 步骤 2: 手动检查并覆盖环境变量 ---
	envReplacer := strings.NewReplacer(".", "_")
	envPrefix := "ANHEYU"

	for _, key := range allKeys {
		envVarName := fmt.Sprintf("%s_%s", envPrefix, envReplacer.Replace(strings.ToUpper(key)))
		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			log.Printf("发现环境变量: %s, 已覆盖配置 '%s'。", envVarName, key)
		}
	}

	log.Println("✅ 配置加载器初始化完成。")
	return &Config{vp: vp}, nil
}

// NewFromMap 用给定的键值构造配置，便于测试和嵌入式使用
func NewFromMap(values map[string]interface{}) *Config {
	vp := viper.New()
	for key, value := range defaults {
		vp.SetDefault(key, value)
	}
	for key, value := range values {
		vp.Set(key, value)
	}
	return &Config{vp: vp}
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetInt64(key string) int64 {
	return c.vp.GetInt64(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

// createDefaultConfigFile 创建默认的配置文件
func createDefaultConfigFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	defaultConfig := `[System]
Port = 8091
Debug = false
JWTSecret =
IDSeed =

[Database]
Type = sqlite
Name = anheyu_attachment.db
Debug = false

# Redis 配置（可选）
# 如果不配置或留空 Addr，系统将自动使用内存缓存
[Redis]
Addr =
Password =
DB = 0

[Log]
Level = info
File =

[Upload]
TempDir = data/temp
MaxSize = 0
Concurrency = 4

[Storage]
LocalPath = data/storage
LocalURLPrefix = /static/attachments/

[Attachment]
MaxFolderDepth = 3
`

	if err := os.WriteFile(filePath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}
