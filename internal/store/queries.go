package store

// SQL query constants. PostgresStore methods reference these constants.

// Job queries.
const (
	queryInsertJob = `
		INSERT INTO jobs (
			id, name, report_type, request_id, report_id,
			state, status, polls, archive_location, bytes, ack_error, error_text,
			completed_at
		) VALUES (
			@id, @name, @report_type, @request_id, @report_id,
			@state, @status, @polls, @archive_location, @bytes, @ack_error, @error_text,
			@completed_at
		)
		RETURNING created_at, updated_at`

	queryUpdateJob = `
		UPDATE jobs SET
			request_id       = @request_id,
			report_id        = @report_id,
			state            = @state,
			status           = @status,
			polls            = @polls,
			archive_location = @archive_location,
			bytes            = @bytes,
			ack_error        = @ack_error,
			error_text       = @error_text,
			completed_at     = @completed_at,
			updated_at       = now()
		WHERE id = @id
		RETURNING updated_at`

	queryGetJob = baseJobsSelect + `
		WHERE id = $1`

	queryListActiveJobs = baseJobsSelect + `
		WHERE state IN ('requested', 'polling')
		ORDER BY created_at ASC`
)
