package domain

import "errors"

var (
	// ErrEmptyAnswer is returned when a submitted answer is empty or
	// whitespace only. The cursor does not move.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrNoSpeech is returned when a transcription succeeds but contains no
	// recognized speech. Treated the same as an empty answer.
	ErrNoSpeech = errors.New("no speech detected in audio")

	// ErrNoAudio is returned when a recording is finished without any
	// captured frames.
	ErrNoAudio = errors.New("no audio captured")

	// ErrUnsupportedFormat is returned when audio cannot be decoded as one of
	// the accepted container formats (mp3, wav).
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrSessionComplete is returned when an answer arrives after all
	// questions have been answered.
	ErrSessionComplete = errors.New("questionnaire already complete")

	// ErrSessionIncomplete is returned when a submission is attempted before
	// every question has an answer.
	ErrSessionIncomplete = errors.New("questionnaire not complete")

	// ErrAlreadySubmitted is returned when a session that has been exported
	// is submitted again.
	ErrAlreadySubmitted = errors.New("use case already submitted")

	// ErrMissingCredentials is returned when the spreadsheet collaborator is
	// not configured with a service account.
	ErrMissingCredentials = errors.New("spreadsheet credentials not configured")
)
