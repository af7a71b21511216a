package util

var GLOBAL_LOG_LEVEL = LogLevelInfo
var GLOBAL_LOG_CATEGORIES = LogVoxel | LogMesh | LogIO | LogSystem

type LogLevel int

const (
	LogLevelError LogLevel = 1 << iota
	LogLevelWarning
	LogLevelDebug
	LogLevelInfo
)

type LogCategory int

const (
	LogVoxel LogCategory = 1 << iota
	LogMesh
	LogIO
	LogSystem
)

func log(cat LogCategory, lvl LogLevel, txt string) {
	if lvl > GLOBAL_LOG_LEVEL {
		return
	}
	if GLOBAL_LOG_CATEGORIES&cat == 0 {
		return
	}
	println(txt)
}

func LogVoxelInfo(txt string) {
	log(LogVoxel, LogLevelInfo, txt)
}

func LogVoxelDebug(txt string) {
	log(LogVoxel, LogLevelDebug, txt)
}

func LogVoxelError(txt string) {
	log(LogVoxel, LogLevelError, txt)
}

func LogMeshInfo(txt string) {
	log(LogMesh, LogLevelInfo, txt)
}

func LogMeshDebug(txt string) {
	log(LogMesh, LogLevelDebug, txt)
}

func LogIOError(txt string) {
	log(LogIO, LogLevelError, txt)
}

func LogIOInfo(txt string) {
	log(LogIO, LogLevelInfo, txt)
}

func LogSystemInfo(txt string) {
	log(LogSystem, LogLevelInfo, txt)
}
