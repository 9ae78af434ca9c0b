package aliyun

import "testing"

func TestObjectUrl(t *testing.T) {
	c := NewOssClient("ak", "sk", "storyshot", "", "")
	if got := c.ObjectUrl("/segments/p1/a.png"); got != "https://storyshot.oss-cn-shanghai.aliyuncs.com/segments/p1/a.png" {
		t.Fatalf("ObjectUrl() = %q", got)
	}
	c.PublicBaseUrl = "https://cdn.example.com/"
	if got := c.ObjectUrl("a.png"); got != "https://cdn.example.com/a.png" {
		t.Fatalf("ObjectUrl() = %q", got)
	}
}
