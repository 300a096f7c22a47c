package provision

import "fmt"

const logsDatasourceUID = "Elasticsearch"

// LogsDashboardConfig builds the dashboard model for one project's log
// view. Panels query the shared log index scoped down to a single
// user and project, so every tenant sees only its own lines.
func LogsDashboardConfig(userID, projectID, title, uid string) map[string]interface{} {
	query := fmt.Sprintf("user_id:%q AND project_id:%q", userID, projectID)
	datasource := map[string]interface{}{
		"type": "elasticsearch",
		"uid":  logsDatasourceUID,
	}
	return map[string]interface{}{
		"uid":           uid,
		"title":         title,
		"tags":          []string{"logs", "provisioned"},
		"timezone":      "browser",
		"schemaVersion": 39,
		"refresh":       "30s",
		"time": map[string]interface{}{
			"from": "now-6h",
			"to":   "now",
		},
		"panels": []map[string]interface{}{
			{
				"id":         1,
				"type":       "logs",
				"title":      "Log stream",
				"datasource": datasource,
				"gridPos":    map[string]interface{}{"h": 16, "w": 24, "x": 0, "y": 0},
				"options": map[string]interface{}{
					"showTime":         true,
					"wrapLogMessage":   true,
					"enableLogDetails": true,
					"sortOrder":        "Descending",
				},
				"targets": []map[string]interface{}{
					{
						"refId": "A",
						"query": query,
						"metrics": []map[string]interface{}{
							{"id": "1", "type": "logs"},
						},
						"timeField": "@timestamp",
					},
				},
			},
			{
				"id":         2,
				"type":       "timeseries",
				"title":      "Log volume",
				"datasource": datasource,
				"gridPos":    map[string]interface{}{"h": 8, "w": 24, "x": 0, "y": 16},
				"targets": []map[string]interface{}{
					{
						"refId": "B",
						"query": query,
						"metrics": []map[string]interface{}{
							{"id": "1", "type": "count"},
						},
						"bucketAggs": []map[string]interface{}{
							{
								"id":    "2",
								"type":  "date_histogram",
								"field": "@timestamp",
								"settings": map[string]interface{}{
									"interval": "auto",
								},
							},
						},
						"timeField": "@timestamp",
					},
				},
			},
		},
	}
}
