package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"storyshot-ai/pkg/aliyun"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AssetStore 生成的图片、视频的存放位置
type AssetStore interface {
	// Save 保存数据并返回可访问的地址
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// LocalAssetStore 存到本地目录，通过 /api/file/{key} 接口访问
type LocalAssetStore struct {
	Dir string
}

// Resolve 把接口路径中的key还原为本地文件路径，key中的 .. 不会越出Dir
func (s *LocalAssetStore) Resolve(key string) string {
	return filepath.Join(s.Dir, filepath.Clean("/"+key))
}

func NewLocalAssetStore(dir string) *LocalAssetStore {
	return &LocalAssetStore{Dir: dir}
}

func (s *LocalAssetStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := s.Resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create asset dir err: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write asset err: %w", err)
	}
	return "/api/file/" + strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+key)), "/"), nil
}

// OssAssetStore 存到阿里云OSS
type OssAssetStore struct {
	client *aliyun.OssClient
}

func NewOssAssetStore(client *aliyun.OssClient) *OssAssetStore {
	return &OssAssetStore{client: client}
}

func (s *OssAssetStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return s.client.PutBytes(ctx, key, data, contentType)
}

// MinioAssetStore 存到MinIO或其他S3兼容存储，返回预签名地址
type MinioAssetStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewMinioAssetStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioAssetStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("MinIO 初始化失败: %w", err)
	}
	return &MinioAssetStore{client: client, bucket: bucket, expiry: 72 * time.Hour}, nil
}

// EnsureBucket 存储桶不存在时创建
func (s *MinioAssetStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查 Bucket 失败: %w", err)
	}
	if exists {
		return nil
	}
	if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("创建 Bucket 失败: %w", err)
	}
	return nil
}

func (s *MinioAssetStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, strings.NewReader(string(data)), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传到 MinIO 失败: %w", err)
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("生成签名 URL 失败: %w", err)
	}
	return presigned.String(), nil
}
