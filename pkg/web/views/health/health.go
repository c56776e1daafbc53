package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/sampletrack/pkg/middleware/redis"
	"github.com/scienceol/sampletrack/pkg/repo/store"
)

// Health is a simple health check.
func Health(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HealthCheck answers the legacy health-check path.
func HealthCheck(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"message": "OK"})
}

// Live is a lightweight liveness check.
func Live(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready verifies the record store and, when configured, redis.
func Ready(g *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := store.Ping(g.Request.Context()); err != nil {
		checks["store"] = "unhealthy"
		healthy = false
	} else {
		checks["store"] = "ok"
	}

	if rc := redis.GetClient(); rc != nil {
		if err := rc.Ping(g.Request.Context()).Err(); err != nil {
			checks["redis"] = "unhealthy"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "disabled"
	}

	status := http.StatusOK
	msg := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		msg = "not_ready"
	}

	g.JSON(status, gin.H{
		"status": msg,
		"checks": checks,
	})
}
