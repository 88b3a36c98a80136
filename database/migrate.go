package database

// Schema DDL. The unique keys here are load-bearing: coupon_usages and
// ratings rely on them as the final arbiter under concurrent writers, and
// checkout_requests uses its primary key to deduplicate retried submissions.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(150) NOT NULL,
		is_member BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL UNIQUE,
		name VARCHAR(150) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		line1 VARCHAR(255) NOT NULL,
		city VARCHAR(100) NOT NULL,
		state VARCHAR(100) NOT NULL,
		zip_code VARCHAR(20) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_addresses_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		store_id BIGINT NOT NULL,
		name VARCHAR(150) NOT NULL,
		price BIGINT NOT NULL,
		mrp BIGINT NOT NULL,
		in_stock BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_products_store (store_id)
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		code VARCHAR(50) PRIMARY KEY,
		discount_kind ENUM('percent','flat') NOT NULL,
		discount_value BIGINT NOT NULL,
		is_public BOOLEAN NOT NULL DEFAULT TRUE,
		for_new_user BOOLEAN NOT NULL DEFAULT FALSE,
		for_member BOOLEAN NOT NULL DEFAULT FALSE,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		store_id BIGINT NOT NULL,
		address_id BIGINT NOT NULL,
		total BIGINT NOT NULL,
		status ENUM('PLACED','PROCESSING','SHIPPED','DELIVERED') NOT NULL DEFAULT 'PLACED',
		payment_method ENUM('COD','ONLINE') NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		is_coupon_used BOOLEAN NOT NULL DEFAULT FALSE,
		coupon JSON NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_orders_user (user_id),
		INDEX idx_orders_store (store_id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		price BIGINT NOT NULL,
		customizations JSON NULL,
		INDEX idx_order_items_order (order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS coupon_usages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		coupon_code VARCHAR(50) NOT NULL,
		order_id BIGINT NOT NULL,
		used_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_coupon_usages_user_code (user_id, coupon_code)
	)`,
	`CREATE TABLE IF NOT EXISTS checkout_requests (
		idempotency_key VARCHAR(64) PRIMARY KEY,
		user_id BIGINT NOT NULL,
		order_id BIGINT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS otp_codes (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		purpose ENUM('SIGNUP','LOGIN','RESET_PASSWORD') NOT NULL,
		code_hash VARCHAR(100) NOT NULL,
		user_id BIGINT NULL,
		expires_at DATETIME NOT NULL,
		used BOOLEAN NOT NULL DEFAULT FALSE,
		invalidated BOOLEAN NOT NULL DEFAULT FALSE,
		attempts INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_otp_email_purpose (email, purpose)
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		order_id BIGINT NOT NULL,
		value TINYINT NOT NULL,
		review TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_ratings_user_product_order (user_id, product_id, order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS wishlist_items (
		user_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		sender_id BIGINT NOT NULL,
		receiver_id BIGINT NOT NULL,
		body TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_messages_receiver (receiver_id)
	)`,
}

func Migrate() error {
	for _, stmt := range migrations {
		if _, err := DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
