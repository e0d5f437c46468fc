package resource

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/LENAX/schedule-migrator/pkg/core/schedule"
)

// Resolver 启动器制品解析器（对外导出）
// 支持 maven://、docker:、http(s)://、file: 四种坐标
type Resolver struct{}

// NewResolver 创建解析器
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve 解析制品坐标
func (r *Resolver) Resolve(uri string) (*schedule.Resource, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("%w: empty", schedule.ErrInvalidResource)
	}

	scheme, rest, ok := strings.Cut(uri, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("%w: missing scheme in %q", schedule.ErrInvalidResource, uri)
	}

	switch strings.ToLower(scheme) {
	case "maven":
		return parseMaven(uri, strings.TrimPrefix(rest, "//"))
	case "docker":
		image := strings.TrimPrefix(rest, "//")
		if image == "" {
			return nil, fmt.Errorf("%w: empty docker image in %q", schedule.ErrInvalidResource, uri)
		}
		return &schedule.Resource{URI: uri, Scheme: "docker", Image: image}, nil
	case "http", "https", "file":
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schedule.ErrInvalidResource, err)
		}
		location := u.Path
		if u.Opaque != "" {
			location = u.Opaque
		}
		if scheme != "file" && u.Host == "" {
			return nil, fmt.Errorf("%w: missing host in %q", schedule.ErrInvalidResource, uri)
		}
		return &schedule.Resource{URI: uri, Scheme: strings.ToLower(scheme), Location: location}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", schedule.ErrInvalidResource, scheme)
	}
}

// parseMaven 解析 group:artifact[:extension[:classifier]]:version
func parseMaven(uri, coordinates string) (*schedule.Resource, error) {
	parts := strings.Split(coordinates, ":")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty maven coordinate segment in %q", schedule.ErrInvalidResource, uri)
		}
	}

	res := &schedule.Resource{URI: uri, Scheme: "maven", Extension: "jar"}
	switch len(parts) {
	case 3:
		res.GroupID, res.ArtifactID, res.Version = parts[0], parts[1], parts[2]
	case 4:
		res.GroupID, res.ArtifactID, res.Extension, res.Version = parts[0], parts[1], parts[2], parts[3]
	case 5:
		res.GroupID, res.ArtifactID, res.Extension, res.Classifier, res.Version = parts[0], parts[1], parts[2], parts[3], parts[4]
	default:
		return nil, fmt.Errorf("%w: maven coordinates must be group:artifact[:extension[:classifier]]:version, got %q",
			schedule.ErrInvalidResource, coordinates)
	}
	return res, nil
}

var _ schedule.ResourceResolver = (*Resolver)(nil)
