// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	    "jobs":     job.Healthcheck(manager),
//	}, health.WithTimeout(2*time.Second)))
//
// Checks run concurrently under one timeout. Responses are plain text
// unless the client asks for JSON with an Accept header or ?format=json.
package health
