package ignore

// DefaultIgnorePatterns are always excluded, on top of .gitignore,
// .claudeignore and configured excludes. Plain names match any path
// component; glob patterns match the base name or the whole relative path.
var DefaultIgnorePatterns = []string{
	// Version control
	".git", ".svn", ".hg",

	// Dependencies
	"node_modules", "vendor", "bower_components", ".npm", ".yarn", ".pnp.*",

	// Build output
	"dist", "build", "out", "target", "bin", "obj",

	// Editors and OS
	".idea", ".vscode", ".vs", "*.swp", "*.swo", "*~", ".DS_Store", "Thumbs.db", "desktop.ini",

	// Python
	"__pycache__", "*.pyc", "*.pyo", "*.pyd", ".venv", "venv", ".env",
	".pytest_cache", ".mypy_cache", ".ruff_cache", ".tox", ".coverage",

	// Compiled and archives
	"*.exe", "*.dll", "*.so", "*.dylib", "*.o", "*.a", "*.lib", "*.class", "*.jar", "*.war",
	"*.zip", "*.tar", "*.tar.gz", "*.tgz", "*.rar", "*.7z",

	// Media, fonts and documents
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.ico", "*.webp", "*.tiff",
	"*.woff", "*.woff2", "*.ttf", "*.eot", "*.otf",
	"*.mp3", "*.mp4", "*.avi", "*.mov", "*.wav", "*.flac",
	"*.pdf", "*.doc", "*.docx", "*.xls", "*.xlsx", "*.ppt", "*.pptx",

	// Generated
	"*.min.js", "*.min.css", "*.map",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "Gemfile.lock",
	"poetry.lock", "Cargo.lock", "go.sum", "composer.lock",

	// Coverage and caches
	"coverage", ".nyc_output", "htmlcov", ".cache", ".parcel-cache", ".next", ".nuxt",

	// Logs and databases
	"*.log", "*.sqlite", "*.sqlite3", "*.db",

	// Our own atomic-write temp files
	".codemap-*.tmp",
}

// DefaultConfigFiles are listed under "Configuration Files" in the index document.
var DefaultConfigFiles = []string{
	"package.json", "requirements.txt", "setup.py", "pyproject.toml",
	"Cargo.toml", "go.mod", "composer.json", "Gemfile", ".env.example",
	"Dockerfile", "docker-compose.yml", ".gitignore", "Makefile",
}

// prunedDirNames are skipped during traversal without a full rule check.
var prunedDirNames = map[string]bool{
	".git": true, ".svn": true, ".hg": true, "node_modules": true, "__pycache__": true,
	".idea": true, ".vscode": true, ".vs": true, ".next": true, ".nuxt": true,
	".cache": true, ".parcel-cache": true, "coverage": true, ".nyc_output": true, "htmlcov": true,
	".venv": true, "venv": true, ".pytest_cache": true, ".mypy_cache": true, ".tox": true,
}
