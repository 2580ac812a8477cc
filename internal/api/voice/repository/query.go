package voiceRepository

const (
	queryListActiveKeywords = `
		SELECT
			id, action, route, locale, keyword,
			position, is_active, created_at, updated_at
		FROM voice_command_keywords
		WHERE is_active = TRUE
		ORDER BY route, position, action, id
	`

	queryCreateKeyword = `
		INSERT INTO voice_command_keywords (
			id, action, route, locale, keyword,
			position, is_active, created_at, updated_at
		) VALUES (
			:id, :action, :route, :locale, :keyword,
			:position, :is_active, :created_at, :updated_at
		)
	`

	queryDeactivateKeyword = `
		UPDATE voice_command_keywords
		SET
			is_active = FALSE,
			updated_at = :updated_at
		WHERE id = :id AND is_active = TRUE
	`

	queryCreateSession = `
		INSERT INTO voice_sessions (
			id, device_id, user_id, locale, route,
			utterances, started_at
		) VALUES (
			:id, :device_id, :user_id, :locale, :route,
			:utterances, :started_at
		)
	`

	queryEndSession = `
		UPDATE voice_sessions
		SET
			locale = :locale,
			route = :route,
			utterances = :utterances,
			ended_at = :ended_at
		WHERE id = :id
	`
)
