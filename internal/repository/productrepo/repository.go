package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/cache"
	"brasero/internal/pkg/logger"
)

// productCacheKey é a chave do produto no Redis.
const productCacheKey = "product:%s"

const productColumns = `id, name, description, price, category, image_url, available, created_at, updated_at`

// ProductRepository acessa o cardápio no PostgreSQL com cache-aside no Redis.
type ProductRepository struct {
	DB        *sql.DB      // Conexão principal com o banco de dados (PostgreSQL)
	Cache     cache.Client // Cliente para operações de cache (Redis)
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository injeta as dependências de infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.ImageURL,
		&p.Available,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func notFound(id string) error {
	return apperror.NewNotFoundError(fmt.Sprintf("produto com ID %s não existe.", id))
}

// Save persiste um novo produto.
func (r *ProductRepository) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO products (`+productColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.Available, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("failed to insert product", err)
	}
	return p, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, notFound(id)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// 1. Cache
	cached, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cached), &product) == nil {
			return product, nil
		}
		r.logger.Warn("Entrada de cache corrompida, consultando o DB.", map[string]interface{}{"key": key})
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// 2. Banco de dados
	product, err = scanProduct(r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, notFound(id)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("failed to find product", err)
	}

	// 3. Popula o cache
	if payload, err := json.Marshal(product); err == nil {
		if err := r.Cache.Set(ctxTimeout, key, payload, r.CacheTTL); err != nil {
			r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	return product, nil
}

// buildWhere monta a cláusula WHERE e os argumentos a partir do filtro.
func buildWhere(f domain.ProductFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !f.IncludeUnavailable {
		conds = append(conds, "available = TRUE")
	}
	if f.Query != "" {
		add("name ILIKE $%d", "%"+escapeLike(f.Query)+"%")
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.MinPrice > 0 {
		add("price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add("price <= $%d", f.MaxPrice)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// FindAll devolve a página pedida e o total de produtos que casam com o filtro.
// O filtro já deve estar normalizado.
func (r *ProductRepository) FindAll(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where, args := buildWhere(f)

	var total int
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		r.logger.Error("Falha ao contar produtos.", err)
		return nil, 0, apperror.NewDBError("failed to count products", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY category, name, id LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	rows, err := r.DB.QueryContext(ctxTimeout, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		r.logger.Error("Falha ao listar produtos.", err)
		return nil, 0, apperror.NewDBError("failed to list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, f.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, apperror.NewDBError("failed to scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.NewDBError("failed to iterate products", err)
	}
	return products, total, nil
}

// Update grava todos os campos editáveis e invalida o cache.
func (r *ProductRepository) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return domain.Product{}, notFound(p.ID)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	updated, err := scanProduct(r.DB.QueryRowContext(ctxTimeout,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, category = $5, image_url = $6, available = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.Available,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, notFound(p.ID)
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("failed to update product", err)
	}

	r.invalidate(ctxTimeout, p.ID)
	return updated, nil
}

// Delete remove o produto (itens de carrinho caem em cascata) e invalida o cache.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(id)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover produto no DB.", err)
		return apperror.NewDBError("failed to delete product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}

	r.invalidate(ctxTimeout, id)
	return nil
}

func (r *ProductRepository) invalidate(ctx context.Context, id string) {
	key := fmt.Sprintf(productCacheKey, id)
	if err := r.Cache.Delete(ctx, key); err != nil {
		r.logger.Warn("Falha ao invalidar cache do produto.", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
