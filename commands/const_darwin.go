package commands

const (
	_etc = "/usr/local/etc/com.github.cgim"
	_var = "/usr/local/var/com.github.cgim"

	_browser = "open"

	DEFAULT_CONFIG      = _etc + "/ledger-sheets/ledger-sheets.yaml"
	DEFAULT_WORKDIR     = _var + "/ledger-sheets"
	DEFAULT_CREDENTIALS = _etc + "/ledger-sheets/.google/credentials.json"
)
