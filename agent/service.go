package agent

import (
	"time"

	log "github.com/gmyun1999/MY-LOG-BE/chassis/logging"
	"github.com/gmyun1999/MY-LOG-BE/domain"
)

const (
	collectorDir = "filebeat"
	routerDir    = "logstash-9.0.1"
)

// Service renders the collector config, router config and bootstrap
// script for one project and publishes all three.
type Service struct {
	Storage Storage
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) upload(resourceID string, cfg *RenderedConfig, ts int64) (string, error) {
	key := s.Storage.ObjectKey(resourceID, ts, cfg.Filename)
	return s.Storage.Upload(cfg.Content, key, ContentTypeFor(cfg.Filename))
}

// ProvisionArtifacts generates and uploads every agent artifact for the
// given project. The returned context carries the download URLs the
// bootstrap script and the project record need.
func (s *Service) ProvisionArtifacts(
	resourceID string,
	collectorCtx *CollectorContext,
	routerCtx *RouterContext,
	platform domain.PlatformType,
) (*domain.AgentContext, error) {
	ts := s.now().Unix()

	collectorCfg, err := RenderCollectorConfig(collectorCtx)
	if err != nil {
		return nil, err
	}
	routerCfg, err := RenderRouterConfig(routerCtx)
	if err != nil {
		return nil, err
	}

	// The bootstrap script embeds the final object URLs, so they are
	// computed before anything is uploaded.
	collectorKey := s.Storage.ObjectKey(resourceID, ts, collectorCfg.Filename)
	routerKey := s.Storage.ObjectKey(resourceID, ts, routerCfg.Filename)
	bootstrapCfg, err := RenderBootstrapScript(&BootstrapContext{
		BaseStaticURL:      s.Storage.BaseStaticURL(),
		CollectorConfigURL: s.Storage.ObjectURL(collectorKey),
		RouterConfigURL:    s.Storage.ObjectURL(routerKey),
		CollectorDir:       collectorDir,
		RouterDir:          routerDir,
		Timestamp:          ts,
		Platform:           platform,
	})
	if err != nil {
		return nil, err
	}

	collectorURL, err := s.upload(resourceID, collectorCfg, ts)
	if err != nil {
		return nil, err
	}
	routerURL, err := s.upload(resourceID, routerCfg, ts)
	if err != nil {
		return nil, err
	}
	scriptURL, err := s.upload(resourceID, bootstrapCfg, ts)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"event":      "agent_artifacts_uploaded",
		"resourceID": resourceID,
		"platform":   platform,
	}).Info("collector, router and bootstrap published")

	return &domain.AgentContext{
		BaseStaticURL:      s.Storage.BaseStaticURL(),
		CollectorConfigURL: collectorURL,
		RouterConfigURL:    routerURL,
		SetUpScriptURL:     scriptURL,
		Timestamp:          ts,
		Platform:           platform,
	}, nil
}
