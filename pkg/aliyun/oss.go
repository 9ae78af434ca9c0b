// Package aliyun 提供阿里云相关服务的客户端实现
package aliyun

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
)

// OssClient 封装了阿里云 OSS 客户端的基本操作
type OssClient struct {
	*oss.Client
	Bucket        string
	Region        string
	PublicBaseUrl string // 为空时使用 https://{bucket}.oss-{region}.aliyuncs.com
}

// NewOssClient 创建一个新的 OSS 客户端实例，region为空时使用上海
func NewOssClient(accessKeyID, accessKeySecret, bucket, region, publicBaseUrl string) *OssClient {
	if region == "" {
		region = "cn-shanghai"
	}
	credProvider := credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret)
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credProvider).
		WithRegion(region)

	return &OssClient{
		Client:        oss.NewClient(cfg),
		Bucket:        bucket,
		Region:        region,
		PublicBaseUrl: publicBaseUrl,
	}
}

// PutBytes 上传内存中的数据
// @return 对象的访问地址
func (o *OssClient) PutBytes(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	_, err := o.PutObject(ctx, &oss.PutObjectRequest{
		Bucket:      oss.Ptr(o.Bucket),
		Key:         oss.Ptr(objectKey),
		ContentType: oss.Ptr(contentType),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object to OSS: %w", err)
	}
	return o.ObjectUrl(objectKey), nil
}

// ObjectUrl 对象的公网访问地址
func (o *OssClient) ObjectUrl(objectKey string) string {
	base := o.PublicBaseUrl
	if base == "" {
		base = fmt.Sprintf("https://%s.oss-%s.aliyuncs.com", o.Bucket, o.Region)
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(objectKey, "/")
}
