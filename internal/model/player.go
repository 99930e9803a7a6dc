package model

import "math"

const (
	defaultPlayerContainer = 20
	defaultExpToNextLevel  = 100
)

// Player — персонаж под управлением игрока: опыт, золото, статистика.
type Player struct {
	*Character // embedded

	experience            int64
	experienceToNextLevel int64
	gold                  int64
	playerID              string
	kills                 int32
	deaths                int32
	playtime              float32
}

// NewPlayer создаёт дружественного игрока с инвентарём на 20 слотов.
func NewPlayer(objectID, name string) *Player {
	p := &Player{
		Character:             NewCharacter(objectID, name),
		experienceToNextLevel: defaultExpToNextLevel,
	}
	p.faction = FactionFriendly
	_ = p.InitContainer(defaultPlayerContainer)
	return p
}

// ExpForLevel — опыт для перехода на level: 100 × level^1.5.
func ExpForLevel(level int32) int64 {
	return int64(100 * math.Pow(float64(level), 1.5))
}

func (p *Player) PlayerID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playerID
}

func (p *Player) SetPlayerID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playerID = id
}

func (p *Player) Experience() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.experience
}

// SetExperience устанавливает опыт (не меньше 0) без проверки уровня.
func (p *Player) SetExperience(exp int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.experience = max(0, exp)
}

func (p *Player) ExperienceToNextLevel() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.experienceToNextLevel
}

// SetExperienceToNextLevel — минимум 1.
func (p *Player) SetExperienceToNextLevel(exp int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.experienceToNextLevel = max(1, exp)
}

// ExperienceNeeded — сколько осталось до следующего уровня.
func (p *Player) ExperienceNeeded() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.experienceToNextLevel - p.experience
}

func (p *Player) ExperiencePercent() float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.experienceToNextLevel <= 0 {
		return 1
	}
	return float32(p.experience) / float32(p.experienceToNextLevel)
}

// AddExperience начисляет опыт и повышает уровень, пока хватает.
// Каждый уровень даёт +10 max HP, +5 max MP, +2 attack и полное восстановление.
// Неположительная сумма игнорируется.
func (p *Player) AddExperience(amount int64) {
	if amount <= 0 {
		return
	}

	p.mu.Lock()
	p.experience += amount
	h := p.hooks
	p.mu.Unlock()

	if eh, ok := h.(ExperienceGainedHook); ok {
		eh.OnExperienceGained(p, amount)
	}

	for {
		p.mu.Lock()
		if p.experience < p.experienceToNextLevel {
			p.mu.Unlock()
			return
		}
		p.experience -= p.experienceToNextLevel
		next := p.level + 1
		p.mu.Unlock()

		p.SetLevel(next)
		p.levelUpStats()

		p.mu.Lock()
		p.experienceToNextLevel = max(1, ExpForLevel(p.level+1))
		p.mu.Unlock()
	}
}

func (p *Player) levelUpStats() {
	p.SetMaxHealth(p.MaxHealth() + 10)
	p.SetHealth(p.MaxHealth())
	p.SetMaxMana(p.MaxMana() + 5)
	p.SetMana(p.MaxMana())
	p.SetAttackDamage(p.AttackDamage() + 2)
}

func (p *Player) Gold() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gold
}

// SetGold устанавливает золото (не меньше 0). Изменение вызывает GoldChangedHook.
func (p *Player) SetGold(gold int64) {
	p.mu.Lock()
	old := p.gold
	p.gold = max(0, gold)
	cur := p.gold
	h := p.hooks
	p.mu.Unlock()

	if cur != old {
		if gh, ok := h.(GoldChangedHook); ok {
			gh.OnGoldChanged(p, old, cur)
		}
	}
}

func (p *Player) HasGold(amount int64) bool { return p.Gold() >= amount }

// AddGold прибавляет amount (может быть отрицательным, итог не меньше 0).
func (p *Player) AddGold(amount int64) {
	if amount == 0 {
		return
	}
	p.SetGold(p.Gold() + amount)
}

// SpendGold списывает золото. Неположительная сумма всегда успешна.
func (p *Player) SpendGold(amount int64) bool {
	if amount <= 0 {
		return true
	}
	p.mu.Lock()
	if p.gold < amount {
		p.mu.Unlock()
		return false
	}
	old := p.gold
	p.gold -= amount
	cur := p.gold
	h := p.hooks
	p.mu.Unlock()

	if gh, ok := h.(GoldChangedHook); ok {
		gh.OnGoldChanged(p, old, cur)
	}
	return true
}

func (p *Player) Kills() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.kills
}

func (p *Player) SetKills(n int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kills = max(0, n)
}

func (p *Player) AddKill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kills++
}

func (p *Player) Deaths() int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.deaths
}

func (p *Player) SetDeaths(n int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deaths = max(0, n)
}

func (p *Player) AddDeath() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deaths++
}

// KDRatio — kills/deaths; без смертей равен kills.
func (p *Player) KDRatio() float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.deaths > 0 {
		return float32(p.kills) / float32(p.deaths)
	}
	return float32(p.kills)
}

// Playtime — наигранное время в секундах.
func (p *Player) Playtime() float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playtime
}

func (p *Player) SetPlaytime(t float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playtime = max(0, t)
}

// Tick регенерирует и копит playtime.
func (p *Player) Tick(delta float32) {
	p.Character.Tick(delta)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.playtime += delta
}

// Serialize дополняет ключи Character параметрами игрока.
func (p *Player) Serialize() map[string]any {
	data := p.Character.Serialize()

	p.mu.RLock()
	defer p.mu.RUnlock()
	data["experience"] = p.experience
	data["experience_to_next_level"] = p.experienceToNextLevel
	data["gold"] = p.gold
	data["player_id"] = p.playerID
	data["kills"] = p.kills
	data["deaths"] = p.deaths
	data["playtime"] = p.playtime
	return data
}

func (p *Player) Deserialize(data map[string]any) error {
	if err := p.Character.Deserialize(data); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.experience = getInt64(data, "experience", 0)
	p.experienceToNextLevel = getInt64(data, "experience_to_next_level", defaultExpToNextLevel)
	p.gold = getInt64(data, "gold", 0)
	p.playerID = getString(data, "player_id", "")
	p.kills = getInt32(data, "kills", 0)
	p.deaths = getInt32(data, "deaths", 0)
	p.playtime = getFloat32(data, "playtime", 0)
	return nil
}
