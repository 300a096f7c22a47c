package agent

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gmyun1999/MY-LOG-BE/domain"
)

func TestProvisionArtifactsUploadsAllThree(t *testing.T) {
	storage := InitMemoryStorage()
	svc := &Service{
		Storage: storage,
		Now:     func() time.Time { return time.Unix(1700000000, 0) },
	}

	ctx, err := svc.ProvisionArtifacts("p1",
		&CollectorContext{
			ProjectID:        "p1",
			Hosts:            []string{"router.internal:5044"},
			LogPaths:         []string{"/var/log/app/*.log"},
			InputType:        InputPlain,
			MultilinePattern: `^\d{4}`,
		},
		&RouterContext{
			ProjectID:      "p1",
			MQHost:         "mq.internal",
			MQPort:         5672,
			MQUser:         "agent",
			MQPassword:     "secret",
			MQVHost:        "/",
			MQExchange:     "logs",
			MQExchangeType: "topic",
			MQRoutingKey:   "logs.app",
		},
		domain.PlatformLinux,
	)
	require.NoError(t, err)

	require.Equal(t, int64(1700000000), ctx.Timestamp)
	require.Equal(t, storage.BaseStaticURL(), ctx.BaseStaticURL)

	prefix := fmt.Sprintf("configs/p1/%d", ctx.Timestamp)
	collectorKey := prefix + "/collector_p1.yml"
	routerKey := prefix + "/router_p1.conf"
	scriptKey := prefix + "/setup-agent.sh"

	for _, key := range []string{collectorKey, routerKey, scriptKey} {
		_, ok := storage.Object(key)
		require.True(t, ok, key)
	}
	require.Equal(t, "text/yaml", storage.ContentType(collectorKey))
	require.Equal(t, "text/x-shellscript", storage.ContentType(scriptKey))
	require.Equal(t, "application/octet-stream", storage.ContentType(routerKey))

	require.Equal(t, storage.ObjectURL(collectorKey), ctx.CollectorConfigURL)
	require.Equal(t, storage.ObjectURL(routerKey), ctx.RouterConfigURL)
	require.Equal(t, storage.ObjectURL(scriptKey), ctx.SetUpScriptURL)

	// The bootstrap script must reference the exact uploaded configs.
	script, _ := storage.Object(scriptKey)
	require.Contains(t, string(script), ctx.CollectorConfigURL)
	require.Contains(t, string(script), ctx.RouterConfigURL)
}
