// Package jobfile читает описание jobs для syncron-scheduler из YAML.
//
// Формат:
//
//	jobs:
//	  - name: digest
//	    cron: "0 9 * * *"
//	    action: {type: log, message: "send digest"}
//	  - name: weekly-report
//	    rule:
//	      hour: [10]
//	      minute: [0]
//	      day_of_week: [1]
//	      timezone: Europe/Moscow
//	    action: {type: publish}
//	  - name: migrate-once
//	    at: "2026-12-01T03:00:00Z"
//	    action: {type: log}
//	  - name: first-monday-cleanup
//	    rule:
//	      hour: [4]
//	      day_of_week: [1]
//	      once: true
//	      start: "2026-11-01T00:00:00Z"
//	    action: {type: log}
//	  - name: warm-cache
//	    cron: "@every 10m"
//	    action:
//	      type: http
//	      url: http://cache.internal/warm
//	      timeout: 5s
//
// У каждого job ровно одно из полей cron, rule, at. Для rule с once
// поле start задаёт общую для всех инстансов точку отсчёта.
package jobfile
