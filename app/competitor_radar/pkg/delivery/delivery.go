package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/logger"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/report"
)

// ErrUnsupportedDestination 无法识别的投递目标
var ErrUnsupportedDestination = errors.New("unsupported delivery destination")

// Channel 报告投递渠道
type Channel interface {
	Deliver(ctx context.Context, doc *report.Document, destination string) error
}

// Router 按目标格式选择渠道：s3://bucket/key 走对象存储，邮箱地址走 SMTP
type Router struct {
	email  Channel
	object Channel
}

// NewRouter 创建路由，未配置的渠道传 nil
func NewRouter(email, object Channel) *Router {
	return &Router{email: email, object: object}
}

// FromConfig 按配置创建全部渠道
func FromConfig(ctx context.Context, cfg config.DeliveryConfig) (*Router, error) {
	r := &Router{}
	if cfg.SMTP.Host != "" {
		r.email = NewSMTPChannel(cfg.SMTP)
	}
	object, err := NewS3Channel(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	r.object = object
	return r, nil
}

var _ Channel = (*Router)(nil)

// Deliver 实现 Channel
func (r *Router) Deliver(ctx context.Context, doc *report.Document, destination string) error {
	destination = strings.TrimSpace(destination)
	ch, name, err := r.route(destination)
	if err != nil {
		return err
	}

	if err := ch.Deliver(ctx, doc, destination); err != nil {
		logger.Log.Errorf("报告投递失败 [%s -> %s]: %v", name, destination, err)
		return fmt.Errorf("deliver via %s: %w", name, err)
	}
	logger.Log.Infof("报告已投递 [%s -> %s]", name, destination)
	return nil
}

func (r *Router) route(destination string) (Channel, string, error) {
	switch {
	case strings.HasPrefix(destination, "s3://"):
		if r.object == nil {
			return nil, "", fmt.Errorf("%w: object storage is not configured", ErrUnsupportedDestination)
		}
		return r.object, "s3", nil
	case isEmail(destination):
		if r.email == nil {
			return nil, "", fmt.Errorf("%w: smtp is not configured", ErrUnsupportedDestination)
		}
		return r.email, "smtp", nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedDestination, destination)
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
