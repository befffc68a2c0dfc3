package sqlinline

const QInsertDonation = `--sql 2d17710c-6854-4285-bc6f-b5c2706e26a0
with inserted as (
    insert into donations (user_id, amount, category, donor_name, email, message, status, transaction_id, payment_method, currency, created_at, updated_at)
    values ($1::uuid, $2::bigint, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::text, $10::text, now(), now())
    returning id, user_id, amount, category, donor_name, email, message, status, transaction_id, payment_method, currency, created_at, updated_at
)
select i.id::text, i.user_id::text, i.amount, i.category, i.donor_name, i.email, i.message, i.status,
       i.transaction_id, i.payment_method, i.currency, i.created_at, i.updated_at,
       coalesce(u.name, ''), coalesce(u.email, '')
from inserted i
left join users u on u.id = i.user_id;
`

const QListDonationsByOwner = `--sql 144b7891-478d-4ff6-8027-fa43ed29864c
select d.id::text, d.user_id::text, d.amount, d.category, d.donor_name, d.email, d.message, d.status,
       d.transaction_id, d.payment_method, d.currency, d.created_at, d.updated_at,
       coalesce(u.name, ''), coalesce(u.email, '')
from donations d
left join users u on u.id = d.user_id
where d.user_id = $1::uuid
order by d.created_at desc, d.id desc
limit $2::int offset $3::int;
`

const QCountDonationsByOwner = `--sql 5f3a984f-0b24-41d6-9fe7-3633db80df65
select count(*)
from donations
where user_id = $1::uuid;
`

const QListAllDonations = `--sql ddbfdba4-791f-4f13-ad58-b33f39ededb6
select d.id::text, d.user_id::text, d.amount, d.category, d.donor_name, d.email, d.message, d.status,
       d.transaction_id, d.payment_method, d.currency, d.created_at, d.updated_at,
       coalesce(u.name, ''), coalesce(u.email, '')
from donations d
left join users u on u.id = d.user_id
order by d.created_at desc, d.id desc
limit $1::int offset $2::int;
`

const QCountAllDonations = `--sql cd855b4e-c510-40ea-9167-3dd957b3800d
select count(*)
from donations;
`
