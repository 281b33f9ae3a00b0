package customHttpClient

import (
	"net/http"

	"github.com/nkatta/HelpCenterRAG/internal/config"
)

// shared pooled transport so the OpenAI embedding and chat clients reuse
// connections instead of redialing per call

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooledClient = &http.Client{Transport: customTransport}

func PooledClient() *http.Client {
	return pooledClient
}
