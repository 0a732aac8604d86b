package constant

type VideoStatus string

const (
	VideoStatusUploaded    VideoStatus = "uploaded"
	VideoStatusProcessing  VideoStatus = "processing"
	VideoStatusCompleted   VideoStatus = "completed"
	VideoStatusFailed      VideoStatus = "failed"
	VideoStatusCancelled   VideoStatus = "cancelled"
	VideoStatusInterrupted VideoStatus = "interrupted"
)

func (s VideoStatus) String() string {
	return string(s)
}

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

func (s JobStatus) String() string {
	return string(s)
}

// Terminal reports whether the job has reached a final state.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

type VehicleStatus string

const (
	VehicleStatusMoving     VehicleStatus = "moving"
	VehicleStatusStationary VehicleStatus = "stationary"
)

type ConnectionState string

const (
	ConnectionConnected    ConnectionState = "connected"
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionError        ConnectionState = "error"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
