package sqlstore

// Timestamps are unix milliseconds so both drivers scan them the same way.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid          TEXT NOT NULL UNIQUE,
    created_at_ms INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS user_balances (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id       INTEGER NOT NULL UNIQUE REFERENCES users(id),
    balance       INTEGER NOT NULL DEFAULT 0,
    updated_at_ms INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS user_balance_transactions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id       INTEGER NOT NULL REFERENCES users(id),
    value         INTEGER NOT NULL,
    type          TEXT NOT NULL,
    module        TEXT NOT NULL,
    created_at_ms INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS roulette_sessions (
    id                TEXT PRIMARY KEY,
    user_id           INTEGER NOT NULL REFERENCES users(id),
    wheel_type        TEXT NOT NULL,
    status            TEXT NOT NULL,
    rounds            INTEGER NOT NULL DEFAULT 0,
    created_at_ms     INTEGER NOT NULL,
    last_active_at_ms INTEGER NOT NULL,
    completed_at_ms   INTEGER
)`,
	`CREATE TABLE IF NOT EXISTS roulette_results (
    id            TEXT PRIMARY KEY,
    session_id    TEXT NOT NULL REFERENCES roulette_sessions(id),
    round         INTEGER NOT NULL,
    result_number INTEGER NOT NULL,
    color         TEXT NOT NULL,
    total_bet     INTEGER NOT NULL,
    total_win     INTEGER NOT NULL,
    created_at_ms INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS roulette_bets (
    id            TEXT PRIMARY KEY,
    session_id    TEXT NOT NULL REFERENCES roulette_sessions(id),
    result_id     TEXT REFERENCES roulette_results(id),
    user_id       INTEGER NOT NULL REFERENCES users(id),
    bet_type      TEXT NOT NULL,
    amount        INTEGER NOT NULL,
    numbers       TEXT NOT NULL,
    status        TEXT NOT NULL,
    win_amount    INTEGER NOT NULL DEFAULT 0,
    placed_at_ms  INTEGER NOT NULL,
    settled_at_ms INTEGER
)`,
	`CREATE TABLE IF NOT EXISTS game_draws (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id       TEXT NOT NULL,
    user_id       INTEGER NOT NULL,
    game          TEXT NOT NULL,
    created_at_ms INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS provably_fairs (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    game_draw_id     INTEGER NOT NULL REFERENCES game_draws(id),
    client_seed      TEXT NOT NULL,
    server_seed      TEXT NOT NULL,
    server_seed_hash TEXT NOT NULL,
    resulted_hash    TEXT NOT NULL,
    resulted_number  INTEGER NOT NULL,
    min              INTEGER NOT NULL,
    max              INTEGER NOT NULL,
    nonce            INTEGER NOT NULL,
    created_at_ms    INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_roulette_sessions_user ON roulette_sessions(user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_roulette_results_session ON roulette_results(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_roulette_bets_session ON roulette_bets(session_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_roulette_bets_result ON roulette_bets(result_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            BIGINT AUTO_INCREMENT PRIMARY KEY,
    uuid          VARCHAR(36) NOT NULL UNIQUE,
    created_at_ms BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS user_balances (
    id            BIGINT AUTO_INCREMENT PRIMARY KEY,
    user_id       BIGINT NOT NULL UNIQUE,
    balance       BIGINT NOT NULL DEFAULT 0,
    updated_at_ms BIGINT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
)`,
	`CREATE TABLE IF NOT EXISTS user_balance_transactions (
    id            BIGINT AUTO_INCREMENT PRIMARY KEY,
    user_id       BIGINT NOT NULL,
    value         BIGINT NOT NULL,
    type          VARCHAR(20) NOT NULL,
    module        VARCHAR(20) NOT NULL,
    created_at_ms BIGINT NOT NULL,
    INDEX idx_user_balance_transactions_user (user_id),
    FOREIGN KEY (user_id) REFERENCES users(id)
)`,
	`CREATE TABLE IF NOT EXISTS roulette_sessions (
    id                VARCHAR(36) PRIMARY KEY,
    user_id           BIGINT NOT NULL,
    wheel_type        VARCHAR(20) NOT NULL,
    status            VARCHAR(20) NOT NULL,
    rounds            INT NOT NULL DEFAULT 0,
    created_at_ms     BIGINT NOT NULL,
    last_active_at_ms BIGINT NOT NULL,
    completed_at_ms   BIGINT NULL,
    INDEX idx_roulette_sessions_user (user_id, status),
    FOREIGN KEY (user_id) REFERENCES users(id)
)`,
	`CREATE TABLE IF NOT EXISTS roulette_results (
    id            VARCHAR(36) PRIMARY KEY,
    session_id    VARCHAR(36) NOT NULL,
    round         BIGINT NOT NULL,
    result_number INT NOT NULL,
    color         VARCHAR(10) NOT NULL,
    total_bet     BIGINT NOT NULL,
    total_win     BIGINT NOT NULL,
    created_at_ms BIGINT NOT NULL,
    INDEX idx_roulette_results_session (session_id),
    FOREIGN KEY (session_id) REFERENCES roulette_sessions(id)
)`,
	`CREATE TABLE IF NOT EXISTS roulette_bets (
    id            VARCHAR(36) PRIMARY KEY,
    session_id    VARCHAR(36) NOT NULL,
    result_id     VARCHAR(36) NULL,
    user_id       BIGINT NOT NULL,
    bet_type      VARCHAR(20) NOT NULL,
    amount        BIGINT NOT NULL,
    numbers       VARCHAR(64) NOT NULL,
    status        VARCHAR(20) NOT NULL,
    win_amount    BIGINT NOT NULL DEFAULT 0,
    placed_at_ms  BIGINT NOT NULL,
    settled_at_ms BIGINT NULL,
    INDEX idx_roulette_bets_session (session_id, status),
    INDEX idx_roulette_bets_result (result_id),
    FOREIGN KEY (session_id) REFERENCES roulette_sessions(id),
    FOREIGN KEY (result_id) REFERENCES roulette_results(id)
)`,
	`CREATE TABLE IF NOT EXISTS game_draws (
    id            BIGINT AUTO_INCREMENT PRIMARY KEY,
    game_id       VARCHAR(36) NOT NULL,
    user_id       BIGINT NOT NULL,
    game          VARCHAR(20) NOT NULL,
    created_at_ms BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS provably_fairs (
    id               BIGINT AUTO_INCREMENT PRIMARY KEY,
    game_draw_id     BIGINT NOT NULL,
    client_seed      VARCHAR(128) NOT NULL,
    server_seed      VARCHAR(128) NOT NULL,
    server_seed_hash CHAR(64) NOT NULL,
    resulted_hash    CHAR(128) NOT NULL,
    resulted_number  INT NOT NULL,
    min              INT NOT NULL,
    max              INT NOT NULL,
    nonce            INT NOT NULL,
    created_at_ms    BIGINT NOT NULL,
    FOREIGN KEY (game_draw_id) REFERENCES game_draws(id)
)`,
}
