package help

const ColdstartYAML = `# mediumgate Quick Start

detection_sources:
  allowlist: "Hostname is a known Medium publication domain (no network)"
  cache: "Hostname answered from the detection cache (10m TTL)"
  probe: "Head of the page was fetched and scored"
  invalid-url: "Input could not be parsed as a URL"

commands:
  classify_one: |
    mediumgate detect https://blog.example.com/some-post

  classify_many: |
    mediumgate detect --urls "https://a.example/x,https://b.example/y" --workers 8

  machine_output: |
    mediumgate detect --format yaml --quiet https://blog.example.com/some-post

  with_preview: |
    mediumgate detect --preview https://blog.example.com/some-post

  allowlist_check: |
    mediumgate domain towardsdatascience.com

  mirror_url: |
    mediumgate mirror https://medium.com/@writer/some-post-1abc

  run_service: |
    mediumgate serve --addr :8455

  inspect_history: |
    mediumgate history --limit 50
    mediumgate history purge --older-than 168h

  preferences: |
    mediumgate prefs show
    mediumgate prefs set --auto-redirect=false --threshold 9

service_endpoints:
  - "GET /api/detect?url=...&threshold=N&preview=1"
  - "GET /api/domains/check?hostname=..."
  - "GET /r?url=...  (302 to the mirror for Medium URLs)"
  - "GET /api/history, GET /api/history/stats"
  - "GET /api/prefs, PUT /api/prefs"
  - "GET /healthz, GET /readyz, GET /metrics"

scoring:
  - "Signals come only from the <head> of the page"
  - "Weights: app ids 3, deep links 3, author link 3, app names 2, ld+json 2, misc 1"
  - "Score >= threshold (default 8) means Medium-likely"
  - "Failed probes cache a zero score, so hosts are not rechecked for 10m"

config:
  file: "config.yaml next to the binary, or --config <path>"
  env: "MEDIUMGATE_THRESHOLD, MEDIUMGATE_MIRROR_BASE, MEDIUMGATE_CACHE_TTL, MEDIUMGATE_REDIS_URL, MEDIUMGATE_ADDR, MEDIUMGATE_DB_PATH"

error_behavior:
  - "Malformed URLs: fail fast before probing"
  - "Probe failures: scored 0 and cached, never fatal"
  - "Exit codes: 0=answers printed, 1=bad input, 2=config or output failure"
`
