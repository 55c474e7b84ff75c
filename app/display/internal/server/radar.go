package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/delivery"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/engine"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/llm"
	crLogger "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/logger"
	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/report"
	"github.com/iWorld-y/competitor_radar/app/display/internal/usecase"
)

// NewRadarUseCase 初始化 competitor_radar 引擎并包装为业务逻辑
func NewRadarUseCase(c *config.Config, logger log.Logger) (*usecase.AnalysisUseCase, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil {
		c = &config.Config{}
	}
	// kratos 配置加载不会读取环境变量中的凭据
	c.ApplyEnv()
	c.ApplyDefaults()

	// 初始化日志
	if err := crLogger.InitLogger(c.Log.Level, c.Log.File); err != nil {
		helper.Errorf("Failed to init competitor_radar logger: %v", err)
		_ = crLogger.InitLogger("info", "") // 降级处理
	}

	ctx := context.Background()
	cm, err := llm.NewChatModel(ctx, c)
	if err != nil {
		helper.Errorf("Failed to init chat model: %v", err)
		return nil, nil, err
	}

	// 初始化核心引擎
	eng, err := engine.NewEngine(c, engine.WithChatModel(cm))
	if err != nil {
		helper.Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	var deliverer delivery.Channel
	router, err := delivery.FromConfig(ctx, c.Delivery)
	if err != nil {
		helper.Warnf("Report delivery disabled: %v", err)
	} else {
		deliverer = router
	}

	fast := llm.FastTier(c.LLM)
	headline := func(ctx context.Context, req dm.AnalysisRequest, result *dm.AnalysisResult) string {
		return report.Headline(ctx, cm, fast, req, result)
	}

	cleanup := func() {
		helper.Info("Cleaning up competitor_radar engine")
	}

	return usecase.NewAnalysisUseCase(eng, headline, deliverer, eng.Categories(), logger), cleanup, nil
}
