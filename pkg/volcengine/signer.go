package volcengine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	signAlgorithm  = "HMAC-SHA256"
	signTerminator = "request"
	xDateLayout    = "20060102T150405Z"
	shortDateLyt   = "20060102"
)

// Signer 火山引擎OpenAPI签名
// 签名密钥按 日期 -> 区域 -> 服务 -> "request" 逐级HMAC得到
type Signer struct {
	AccessKeyId     string
	SecretAccessKey string
	Region          string
	Service         string
	now             func() time.Time
}

// SignRequest 参与签名的请求要素
type SignRequest struct {
	Method      string
	Host        string
	Path        string
	Query       url.Values
	ContentType string
	Body        []byte
}

// Sign 返回需要附加到请求上的头：X-Date、X-Content-Sha256、Authorization
func (s *Signer) Sign(req SignRequest) map[string]string {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	t := now().UTC()
	xDate := t.Format(xDateLayout)
	shortDate := t.Format(shortDateLyt)
	payloadHash := hashHex(req.Body)

	headers := map[string]string{
		"content-type":     req.ContentType,
		"host":             req.Host,
		"x-content-sha256": payloadHash,
		"x-date":           xDate,
	}
	signedHeaders, canonicalHeaders := canonicalizeHeaders(headers)

	path := req.Path
	if path == "" {
		path = "/"
	}
	canonicalRequest := strings.Join([]string{
		strings.ToUpper(req.Method),
		path,
		canonicalQuery(req.Query),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	credentialScope := strings.Join([]string{shortDate, s.Region, s.Service, signTerminator}, "/")
	stringToSign := strings.Join([]string{
		signAlgorithm,
		xDate,
		credentialScope,
		hashHex([]byte(canonicalRequest)),
	}, "\n")

	signingKey := deriveSigningKey(s.SecretAccessKey, shortDate, s.Region, s.Service)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	return map[string]string{
		"X-Date":           xDate,
		"X-Content-Sha256": payloadHash,
		"Authorization": fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
			signAlgorithm, s.AccessKeyId, credentialScope, signedHeaders, signature),
	}
}

func deriveSigningKey(secret, shortDate, region, service string) []byte {
	kDate := hmacSHA256([]byte(secret), shortDate)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, signTerminator)
}

// canonicalizeHeaders 头名小写、值去首尾空格、按名称排序
func canonicalizeHeaders(headers map[string]string) (signed string, canonical string) {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, strings.ToLower(k))
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(strings.TrimSpace(headers[name]))
		b.WriteString("\n")
	}
	return strings.Join(names, ";"), b.String()
}

// canonicalQuery 键排序，按RFC3986编码（空格编码为%20）
func canonicalQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for _, v := range values {
			parts = append(parts, rfc3986Escape(k)+"="+rfc3986Escape(v))
		}
	}
	return strings.Join(parts, "&")
}

func rfc3986Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, content string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(content))
	return mac.Sum(nil)
}
